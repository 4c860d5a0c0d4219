package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
)

type cli struct {
	cfg    config.Config
	logger *zap.SugaredLogger
	base   *zap.Logger

	driver     string
	sqlitePath string
	scope      string
	logLevel   string
	logJSON    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Pizza storefront: cart, location and page state over a durable key-value store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.base != nil {
				_ = c.base.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.driver, "driver", "", "store driver: sqlite, postgres, redis or memory (env STORE_DRIVER)")
	flags.StringVar(&c.sqlitePath, "sqlite-path", "", "sqlite database file (env SQLITE_PATH)")
	flags.StringVar(&c.scope, "scope", "", "session scope inside the store (env STORE_SCOPE)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.BoolVar(&c.logJSON, "log-json", false, "log as JSON (env LOG_JSON)")

	root.AddCommand(
		newServeCmd(c),
		newCartCmd(c),
		newVisitCmd(c),
		newLocateCmd(c),
		newBrowseCmd(c),
	)
	return root
}

// init loads the environment config and lets explicit flags override it.
func (c *cli) init(cmd *cobra.Command) error {
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.StoreDriver = c.driver
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = c.sqlitePath
	}
	if flags.Changed("scope") {
		cfg.StoreScope = c.scope
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = c.logJSON
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	base, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.base = base
	c.logger = base.Sugar()
	return nil
}

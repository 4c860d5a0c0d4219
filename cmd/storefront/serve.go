package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env HTTP_ADDR)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", c.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.cfg.HTTPAddr, err)
	}
	return c.serveOn(ctx, ln)
}

// serveOn serves the API on ln until ctx is cancelled, then drains in-flight
// requests. ln is closed on return.
func (c *cli) serveOn(ctx context.Context, ln net.Listener) error {
	sess, err := openSession(ctx, c.cfg, c.logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			c.logger.Warnf("close session: %v", err)
		}
	}()

	h := httpapi.NewHandler(sess.cart, sess.dispatcher, sess.menu, c.logger)
	httpServer := &http.Server{
		Handler:           httpapi.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.logger.Infof("http listening on %s (store=%s scope=%s)", ln.Addr(), c.cfg.StoreDriver, c.cfg.StoreScope)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		c.logger.Infof("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	c.logger.Infof("shutdown complete")
	return nil
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storefront"
)

func newVisitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "visit",
		Short: "Record a page load and print the visit number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *storefrontSession) error {
				change, err := s.dispatcher.HandleUserAction(cmd.Context(), storefront.ActionPageLoad, storefront.Payload{})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(out, "Visit #%d\n", change.Visits); err != nil {
					return err
				}
				if change.Location != "" {
					if _, err := fmt.Fprintf(out, "Delivering to: %s\n", change.Location); err != nil {
						return err
					}
				}
				return renderChange(out, change)
			})
		},
	}
}

func newLocateCmd(c *cli) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Detect a delivery location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("delay") {
				c.cfg.LocateDelay = delay
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Detecting..."); err != nil {
				return err
			}
			return c.dispatch(cmd, storefront.ActionDetectLocation, storefront.Payload{})
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "detection delay (env LOCATE_DELAY)")
	return cmd
}

func newBrowseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <category>",
		Short: "List the menu entries behind a category tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.dispatch(cmd, storefront.ActionSelectCategory, storefront.Payload{Label: args[0]})
		},
	}
}

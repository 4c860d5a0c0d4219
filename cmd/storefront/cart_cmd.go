package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storefront"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the cart",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cart items in display order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(s *storefrontSession) error {
					return renderCart(cmd.OutOrStdout(), s)
				})
			},
		},
		&cobra.Command{
			Use:   "add NAME [PRICE]",
			Short: "Add an item; the menu price is used when PRICE is omitted",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				p := storefront.Payload{Name: args[0]}
				if len(args) == 2 {
					price, err := money.Parse(args[1])
					if err != nil {
						return err
					}
					p.Price = price
				}
				return c.dispatch(cmd, storefront.ActionAddToCart, p)
			},
		},
		newCartRemoveCmd(c),
		&cobra.Command{
			Use:   "total",
			Short: "Print the cart total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(s *storefrontSession) error {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), s.cart.Total())
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart without checking out",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSession(cmd.Context(), func(s *storefrontSession) error {
					if err := s.cart.Clear(cmd.Context()); err != nil {
						return err
					}
					return renderCart(cmd.OutOrStdout(), s)
				})
			},
		},
		&cobra.Command{
			Use:   "checkout",
			Short: "Check out and empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dispatch(cmd, storefront.ActionCheckout, storefront.Payload{})
			},
		},
	)
	return cmd
}

func newCartRemoveCmd(c *cli) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "remove [INDEX]",
		Short: "Remove an item by position or by --id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p storefront.Payload
			switch {
			case id != "":
				p.ItemID = id
			case len(args) == 1:
				idx, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("index must be an integer: %w", err)
				}
				p.Index = &idx
			default:
				return fmt.Errorf("give an INDEX or --id")
			}
			return c.dispatch(cmd, storefront.ActionRemoveFromCart, p)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item id")
	return cmd
}

func (c *cli) withSession(ctx context.Context, fn func(s *storefrontSession) error) error {
	s, err := openSession(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.logger.Warnf("close session: %v", err)
		}
	}()
	return fn(s)
}

// dispatch runs one action and prints its notification, if any.
func (c *cli) dispatch(cmd *cobra.Command, action storefront.Action, p storefront.Payload) error {
	return c.withSession(cmd.Context(), func(s *storefrontSession) error {
		change, err := s.dispatcher.HandleUserAction(cmd.Context(), action, p)
		if err != nil {
			return err
		}
		return renderChange(cmd.OutOrStdout(), change)
	})
}

func renderCart(w io.Writer, s *storefrontSession) error {
	items := s.cart.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty")
		return err
	}
	for i, it := range items {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, it.Name, it.Price, it.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total: %s\n", s.cart.Total())
	return err
}

func renderChange(w io.Writer, change storefront.StateChange) error {
	var lines []string
	if change.Notification != nil {
		lines = append(lines, change.Notification.Message)
	}
	if m := change.Modal; m != nil && m.Location != nil {
		lines = append(lines,
			"Delivering to: "+m.Location.Location,
			"Estimated delivery: "+m.Location.EstimatedDelivery,
		)
	}
	for _, p := range change.Products {
		lines = append(lines, fmt.Sprintf("%s\t%s", p.Name, p.Price))
	}
	if change.Badge.Visible {
		lines = append(lines, fmt.Sprintf("Cart: %d items", change.Badge.Count))
	}
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
)

type quantityArgs struct {
	Quantity int `json:"quantity" validate:"min=1,max=999"`
}

func parseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &services.ValidationError{Op: "parse_args", Reason: fmt.Sprintf("quantity must be a number, got %q", raw)}
	}
	return q, checkQuantity(q)
}

func checkQuantity(q int) error {
	return validateArgs(quantityArgs{Quantity: q})
}

// validateArgs runs the struct tags of v and folds any failures into one
// ValidationError.
func validateArgs(v interface{}) error {
	errs := bind.Struct(v)
	if errs == nil {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+errs[f])
	}
	return &services.ValidationError{Op: "parse_args", Reason: strings.Join(parts, "; ")}
}

// storefront cart
func cartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.gw.GetCart(ctxOf(cmd))
			if err != nil {
				return err
			}
			view := struct {
				Items []models.CartItem `json:"items"`
				Count int               `json:"count"`
				Total string            `json:"total"`
			}{items, models.CartQuantity(items), models.CartTotal(items).StringFixed(2)}
			return emit(cmd, view, func(w io.Writer) {
				if !s.gw.IsAuthenticated() {
					fmt.Fprintln(w, "Not signed in.")
				}
				printCart(w, items)
			})
		},
	}
}

// storefront cart:add <productID> [-q n]
func cartAddCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "cart:add <productID>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			if err := checkQuantity(quantity); err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := printer{cmd.OutOrStdout()}
			if !services.AddToCartAndNotify(ctxOf(cmd), s.gw, id, quantity, out, out) {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "how many to add")
	return cmd
}

// storefront cart:update <itemID> <quantity>
func cartUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart:update <itemID> <quantity>",
		Short: "Set the quantity of a cart item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item id")
			if err != nil {
				return err
			}
			q, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.gw.UpdateCartItemQuantity(ctxOf(cmd), id, q)
			if err != nil {
				return err
			}
			out := printer{cmd.OutOrStdout()}
			if item == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed.")
				return nil
			}
			out.Success("Cart updated")
			services.RefreshCartBadge(ctxOf(cmd), s.gw, out)
			return nil
		},
	}
}

// storefront cart:remove <itemID>
func cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart:remove <itemID>",
		Short: "Remove an item from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "item id")
			if err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.gw.RemoveFromCart(ctxOf(cmd), id); err != nil {
				return err
			}
			out := printer{cmd.OutOrStdout()}
			out.Success("Removed from cart")
			services.RefreshCartBadge(ctxOf(cmd), s.gw, out)
			return nil
		},
	}
}

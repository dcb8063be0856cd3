package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

type setupError struct{}

func (setupError) Error() string { return config.SetupInstructions() }

func (setupError) Unwrap() error { return kernel.ErrNotConfigured }

var errSetup error = setupError{}

// errReported marks a failure already shown to the user.
var errReported = errors.New("storefront: failed")

// renderError prints err the way the storefront shows failures: setup
// instructions, a sign-in hint, the validation reason, or a generic error
// with a retry hint.
func renderError(w io.Writer, err error) {
	var (
		val *services.ValidationError
		nf  *services.NotFoundError
	)
	switch {
	case errors.Is(err, errReported):
	case errors.Is(err, errSetup):
		fmt.Fprint(w, err.Error())
	case errors.Is(err, services.ErrAuthRequired):
		fmt.Fprintln(w, "Please sign in first: storefront login --email you@example.com --password ...")
	case errors.As(err, &val):
		fmt.Fprintln(w, "Error:", val.Reason)
	case errors.As(err, &nf):
		fmt.Fprintln(w, "Error:", nf.Error())
	case auth.IsAuthError(err):
		fmt.Fprintln(w, "Error:", err)
	default:
		fmt.Fprintln(w, "Error:", err)
		fmt.Fprintln(w, "Something went wrong. Run the command again to retry.")
	}
}

// printer is the terminal Notifier and cart Badge.
type printer struct{ w io.Writer }

func (p printer) Success(msg string) { fmt.Fprintln(p.w, "✓", msg) }

func (p printer) Error(msg string) { fmt.Fprintln(p.w, "✗", msg) }

func (p printer) Show(n int) { fmt.Fprintf(p.w, "Cart: %d item(s)\n", n) }

func (p printer) Hide() {}

// emit prints v as JSON under --json, otherwise calls text.
func emit(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func printProducts(w io.Writer, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
	}
	tw.Flush()
}

func printCart(w io.Writer, items []models.CartItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE\tLINE")
	for _, c := range items {
		name, price := fmt.Sprintf("#%d", c.ProductID), "-"
		if c.Product != nil {
			name, price = c.Product.Name, c.Product.Price.StringFixed(2)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", c.ID, name, c.Quantity, price, c.LineTotal().StringFixed(2))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", models.CartTotal(items).StringFixed(2))
}

func printOrders(w io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(w, "Order #%d  %s  %s  total %s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), models.StatusLabel(o.Status), o.TotalAmount.StringFixed(2))
		for _, it := range o.Items {
			name := fmt.Sprintf("#%d", it.ProductID)
			if it.Product != nil {
				name = it.Product.Name
			}
			fmt.Fprintf(w, "  %d x %s @ %s = %s\n", it.Quantity, name, it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2))
		}
	}
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, &services.ValidationError{Op: "parse_args", Reason: fmt.Sprintf("%s must be a positive number, got %q", what, arg)}
	}
	return id, nil
}

// storefront products [--category name]
func productsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List active products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var products []models.Product
			if category != "" {
				products, err = s.gw.ListProductsByCategory(ctxOf(cmd), category)
			} else {
				products, err = s.gw.ListActiveProducts(ctxOf(cmd))
			}
			if err != nil {
				return err
			}
			return emit(cmd, products, func(w io.Writer) { printProducts(w, products) })
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only products in this category")
	return cmd
}

// storefront product <id>
func productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "product id")
			if err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.gw.GetProduct(ctxOf(cmd), id)
			if err != nil {
				return err
			}
			return emit(cmd, p, func(w io.Writer) {
				fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
				fmt.Fprintf(w, "Price:    %s\n", p.Price.StringFixed(2))
				fmt.Fprintf(w, "Category: %s\n", p.Category)
				fmt.Fprintf(w, "Stock:    %d\n", p.Stock)
				if !p.IsActive {
					fmt.Fprintln(w, "No longer available.")
				}
				if p.Description != "" {
					fmt.Fprintf(w, "\n%s\n", p.Description)
				}
			})
		},
	}
}

// storefront categories
func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cats, err := s.gw.ListCategories(ctxOf(cmd))
			if err != nil {
				return err
			}
			return emit(cmd, cats, func(w io.Writer) {
				if len(cats) == 0 {
					fmt.Fprintln(w, "No categories.")
				}
				for _, c := range cats {
					fmt.Fprintf(w, "%-16s %s\n", c.Name, c.Description)
				}
			})
		},
	}
}

// storefront search <query>
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search active products by name, description or category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			hits, err := services.SearchProducts(ctxOf(cmd), s.gw, query)
			if err != nil {
				return err
			}
			return emit(cmd, hits, func(w io.Writer) { printProducts(w, hits) })
		},
	}
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
)

type checkoutArgs struct {
	Address string `json:"address" validate:"required,max=1000"`
}

// storefront checkout --address "..."
func checkoutCmd() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			address = strings.TrimSpace(address)
			if err := validateArgs(checkoutArgs{Address: address}); err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			order, err := s.gw.CreateOrder(ctxOf(cmd), address)
			if err != nil {
				return err
			}
			return emit(cmd, order, func(w io.Writer) {
				printer{w}.Success(fmt.Sprintf("Order #%d placed", order.ID))
				printOrders(w, []models.Order{*order})
			})
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "shipping address")
	return cmd
}

// storefront orders
func ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := (services.AuthGate{}).Require(s.gw.Identity()); err != nil {
				return err
			}
			orders, err := s.gw.ListUserOrders(ctxOf(cmd))
			if err != nil {
				return err
			}
			return emit(cmd, orders, func(w io.Writer) { printOrders(w, orders) })
		},
	}
}

// storefront profile:update [--full-name] [--phone] [--address] [--avatar-url]
func profileUpdateCmd() *cobra.Command {
	var fullName, phone, address, avatar string
	cmd := &cobra.Command{
		Use:   "profile:update",
		Short: "Update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u models.ProfileUpdate
			set := func(flag string, v *string) *string {
				if cmd.Flags().Changed(flag) {
					return v
				}
				return nil
			}
			u.FullName = set("full-name", &fullName)
			u.Phone = set("phone", &phone)
			u.Address = set("address", &address)
			u.AvatarURL = set("avatar-url", &avatar)
			if err := validateArgs(u); err != nil {
				return err
			}

			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.gw.UpdateUserProfile(ctxOf(cmd), u)
			if err != nil {
				return err
			}
			return emit(cmd, user, func(w io.Writer) {
				printer{w}.Success("Profile updated")
				fmt.Fprintf(w, "Name:    %s\nPhone:   %s\nAddress: %s\n", user.FullName, user.Phone, user.Address)
			})
		},
	}
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&address, "address", "", "default shipping address")
	cmd.Flags().StringVar(&avatar, "avatar-url", "", "avatar image URL")
	return cmd
}

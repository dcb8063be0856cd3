package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type credentialArgs struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func credentialFlags(cmd *cobra.Command, c *credentialArgs) {
	cmd.Flags().StringVarP(&c.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&c.Password, "password", "p", "", "account password")
}

// storefront login --email --password
func loginCmd() *cobra.Command {
	var c credentialArgs
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Email = strings.TrimSpace(c.Email)
			if err := validateArgs(c); err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.k.Auth.SignIn(ctxOf(cmd), c.Email, c.Password); err != nil {
				return err
			}
			out := printer{cmd.OutOrStdout()}
			out.Success("Signed in as " + c.Email)
			services.RefreshCartBadge(ctxOf(cmd), s.gw, out)
			return nil
		},
	}
	credentialFlags(cmd, &c)
	return cmd
}

// storefront signup --email --password [--full-name]
func signupCmd() *cobra.Command {
	var (
		c        credentialArgs
		fullName string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Email = strings.TrimSpace(c.Email)
			if err := validateArgs(c); err != nil {
				return err
			}
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var meta map[string]interface{}
			if name := strings.TrimSpace(fullName); name != "" {
				meta = map[string]interface{}{"full_name": name}
			}
			sess, err := s.k.Auth.SignUp(ctxOf(cmd), c.Email, c.Password, meta)
			if err != nil {
				return err
			}
			out := printer{cmd.OutOrStdout()}
			if sess.AccessToken == "" {
				out.Success("Account created. Check your email to confirm it, then run storefront login.")
				return nil
			}
			out.Success("Account created, signed in as " + c.Email)
			return nil
		},
	}
	credentialFlags(cmd, &c)
	cmd.Flags().StringVar(&fullName, "full-name", "", "your name")
	return cmd
}

// storefront logout
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.k.Auth.SignOut(ctxOf(cmd)); err != nil {
				logger.Warn("auth: sign out failed upstream", "error", err)
			}
			printer{cmd.OutOrStdout()}.Success("Signed out")
			return nil
		},
	}
}

// storefront whoami
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and cart size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			user := s.gw.CurrentUser()
			count := services.CartCount(ctxOf(cmd), s.gw)
			view := struct {
				Authenticated bool       `json:"authenticated"`
				User          *auth.User `json:"user"`
				CartCount     int        `json:"cart_count"`
			}{user != nil, user, count}
			return emit(cmd, view, func(w io.Writer) {
				if user == nil {
					fmt.Fprintln(w, "Not signed in.")
					return
				}
				fmt.Fprintf(w, "Signed in as %s (%s)\n", user.Email, user.ID)
				if count > 0 {
					printer{w}.Show(count)
				}
			})
		},
	}
}

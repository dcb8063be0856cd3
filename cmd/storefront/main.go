package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func main() {
	// command output goes to stdout, logs to stderr
	logger.SetOutput(os.Stderr)

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		renderError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

var jsonOutput bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client: catalog, cart and orders",
		Long:          "storefront browses the catalog, manages the cart and places orders against the configured backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	// Shopping
	root.AddCommand(productsCmd(), productCmd(), categoriesCmd(), searchCmd())
	root.AddCommand(cartCmd(), cartAddCmd(), cartUpdateCmd(), cartRemoveCmd())
	root.AddCommand(checkoutCmd(), ordersCmd(), profileUpdateCmd())

	// Session
	root.AddCommand(loginCmd(), signupCmd(), logoutCmd(), whoamiCmd())
	root.AddCommand(configSetCmd())

	// Server
	root.AddCommand(serveCmd(), routeListCmd())

	// Database
	root.AddCommand(migrateCmd(), migrateRollbackCmd(), migrateStatusCmd(), seedCmd())
	return root
}

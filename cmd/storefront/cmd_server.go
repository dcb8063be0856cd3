package main

import (
	"fmt"
	"net"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// storefront serve [--port]
func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run"},
		Short:   "Start the HTTP storefront",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kernel.Boot(ctxOf(cmd))
			if err != nil {
				return err
			}
			defer k.Close()

			if !k.Ready() {
				logger.Warn("serve: backend not configured, answering with setup instructions")
			}
			if port == "" {
				port = config.AppPort()
			}
			return server.Start(ctxOf(cmd), net.JoinHostPort("", port), k.HTTPHandler())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default APP_PORT)")
	return cmd
}

// storefront route:list
func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List the HTTP routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := new(kernel.Kernel).Router().Routes()
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No routes registered.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}

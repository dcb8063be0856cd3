package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/kv"
)

type configArgs struct {
	Key   string `json:"key"   validate:"required,oneof=supabase_url supabase_anon_key"`
	Value string `json:"value" validate:"required"`
}

type endpointArgs struct {
	Value string `json:"value" validate:"required,url"`
}

// storefront config:set <key> <value>
func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config:set <key> <value>",
		Short: "Store a backend setting locally (supabase_url, supabase_anon_key)",
		Long: "config:set saves the backend URL or anon key in the local store.\n" +
			"Values from the environment or .env take precedence.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := configArgs{Key: strings.ToLower(strings.TrimSpace(args[0])), Value: strings.TrimSpace(args[1])}
			if a.Key == kv.KeySupabaseURL {
				a.Value = strings.TrimRight(a.Value, "/")
			}
			if err := validateArgs(a); err != nil {
				return err
			}
			if a.Key == kv.KeySupabaseURL {
				if err := validateArgs(endpointArgs{Value: a.Value}); err != nil {
					return err
				}
			}

			k, err := kernel.Boot(ctxOf(cmd))
			if err != nil {
				return err
			}
			defer k.Close()

			if err := k.KV.Set(ctxOf(cmd), a.Key, a.Value); err != nil {
				return fmt.Errorf("config:set: %w", err)
			}
			printer{cmd.OutOrStdout()}.Success("Saved " + a.Key)
			return nil
		},
	}
}

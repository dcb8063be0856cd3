package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// withDB loads config, opens the SQL backend database and runs fn.
func withDB(fn func() error) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()
	return fn()
}

// storefront migrate
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending migrations of the SQL backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func() error {
				fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
				return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Run()
			})
		},
	}
}

// storefront migrate:rollback
func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last batch of migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func() error {
				fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
				return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Rollback()
			})
		},
	}
}

// storefront migrate:status
func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func() error {
				return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Status()
			})
		},
	}
}

// storefront seed
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into the SQL backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func() error {
				fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
				return seeders.RunAll(database.DB, cmd.OutOrStdout())
			})
		},
	}
}

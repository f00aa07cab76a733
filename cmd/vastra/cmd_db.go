package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/database/seeders"
	"github.com/vastrahub/vastra/pkg/database"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// vastra seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck
		fmt.Println("Running seeders…")
		return seeders.RunAll()
	},
}

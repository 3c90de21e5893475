package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Open()
}

// bazaar db:migrate
var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck
		fmt.Println("Running migrations…")
		return migration.New(db).Run()
	},
}

// bazaar db:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "db:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck
		fmt.Println("Rolling back last batch…")
		return migration.New(db).Rollback()
	},
}

// bazaar db:status
var migrateStatusCmd = &cobra.Command{
	Use:   "db:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck
		return migration.New(db).Status()
	},
}

// bazaar db:seed
var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck
		fmt.Println("Running seeders…")
		return seeders.RunAll(db)
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digaomatias/mymascada/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.NewSQLiteStorage(databasePath())
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Database at %s is at schema version %d.\n",
				databasePath(), storage.ExpectedSchemaVersion)
			return nil
		},
	}
}

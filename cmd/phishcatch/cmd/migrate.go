package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stoik/phishcatch/internal/adapters/storage"
	"github.com/stoik/phishcatch/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Applies the embedded migrations to the postgres database.

The sqlite backend creates its tables when opened and needs no migration.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		switch cfg.Storage.Backend {
		case config.BackendPostgres:
			if err := storage.NewMigration(cfg.Storage.DatabaseURL, storage.DefaultEngine).Up(); err != nil {
				return err
			}
			fmt.Println("✓ Migrations applied")
		default:
			fmt.Printf("Nothing to migrate for the %s backend\n", cfg.Storage.Backend)
		}
		return nil
	},
}

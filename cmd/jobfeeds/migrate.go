package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/jobfeeds/internal/config"
	"github.com/baxromumarov/jobfeeds/internal/store"
)

func newMigrateCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			db, err := store.NewStore(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()

			if schema != "" {
				err = db.RunMigrations(schema)
			} else {
				err = db.Migrate(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			slog.Info("migrations executed successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "path to a schema file (default: embedded schema)")
	return cmd
}

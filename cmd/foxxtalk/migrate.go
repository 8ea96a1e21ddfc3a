package main

import (
	"github.com/spf13/cobra"

	"github.com/slyyfoxx/foxxtalk/internal/config"
	"github.com/slyyfoxx/foxxtalk/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			logger.Info("migrations complete", "driver", cfg.DB.Driver)
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"restaurant-directory/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}

		if len(applied) == 0 {
			logger.Info("Schema is up to date")
			return nil
		}
		logger.Info("Migrations applied", zap.Strings("files", applied))
		return nil
	},
}

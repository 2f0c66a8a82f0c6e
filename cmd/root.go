// Package cmd holds the restaurant-directory command line.
package cmd

import (
	"fmt"
	"log"
	"os"

	"restaurant-directory/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	config *utils.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "restaurant-directory",
	Short: "Restaurant directory API",
	Long: `restaurant-directory serves the restaurant catalog, ratings, favorites,
comments and notifications over a JSON HTTP API.

Configuration is read from .env and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = utils.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = utils.InitLogger(config.App.LogPath, config.App.Debug)
		if err != nil {
			log.Printf("Failed to init logger: %v. Using production logger.", err)
			logger, _ = zap.NewProduction()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

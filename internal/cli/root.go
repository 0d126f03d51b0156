// Package cli defines the cobra command tree for the sharing backend.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nekogravitycat/item-sharing-backend/internal/config"
	"github.com/nekogravitycat/item-sharing-backend/internal/logging"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Item sharing backend",
		Long:          "HTTP API for listing items, booking them from other users, and leaving comments after a booking ends.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
	)

	return root
}

// loadConfig reads configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.IsProduction, cfg.LogLevel)
	return cfg, nil
}

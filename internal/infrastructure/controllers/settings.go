package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// loadSettings loads the file named by the global --config flag.
func loadSettings(cmd *cobra.Command, load entities.SettingsLoader) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return load(configPath)
}

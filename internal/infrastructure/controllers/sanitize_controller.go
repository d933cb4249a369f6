package controllers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// SanitizeController handles the "sanitize" subcommand.
type SanitizeController struct {
	command      commands.Sanitize
	loadSettings entities.SettingsLoader
}

// NewSanitizeController creates a new SanitizeController.
func NewSanitizeController(command commands.Sanitize, loadSettings entities.SettingsLoader) *SanitizeController {
	return &SanitizeController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the sanitize controller.
func (it *SanitizeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "sanitize <file>",
		Short: "Print the sanitized form of a build script",
		Long: `Rewrite a gemspec, setup.py or setup.cfg into a form that can be
evaluated without running project code, and print the result.`,
	}
}

// Execute sanitizes the file given as argument.
func (it *SanitizeController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		logger.Error("a file to sanitize is required")
		return
	}

	settings, err := loadSettings(cmd, it.loadSettings)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}
	if version, _ := cmd.Flags().GetString("replacement-version"); version != "" {
		settings.Sanitizer.ReplacementVersion = version
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		logger.Errorf("failed to read %s: %v", args[0], err)
		return
	}

	file := entities.NewManagedFile(filepath.Base(args[0]), string(content))
	result, err := it.command.Execute(ctx, settings, file)
	if err != nil {
		logger.Errorf("Sanitize failed: %v", err)
		return
	}
	if result.IsDegraded() {
		logger.Warnf("Sanitized output of %s is partial: %v", args[0], result.Degraded)
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), result.Text)
}

// AddFlags adds the sanitize-specific flags to the given Cobra command.
func (it *SanitizeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("replacement-version", "", "Version literal substituted for computed versions")
}

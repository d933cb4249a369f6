package controllers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// UpdateController handles the "update" subcommand.
type UpdateController struct {
	command      commands.Update
	loadSettings entities.SettingsLoader
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update, loadSettings entities.SettingsLoader) *UpdateController {
	return &UpdateController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update <dir>",
		Short: "Bump a dependency in the pip-compile files of a project",
		Long: `Regenerate the compiled requirement files of a project for a new
dependency version and patch every manifest and plain requirement file
that declares it.

Changed files are printed unless --write is given.`,
	}
}

// Execute runs the update for the project directory given as argument.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	settings, err := loadSettings(cmd, it.loadSettings)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}

	dependency, err := dependencyFromFlags(cmd)
	if err != nil {
		logger.Errorf("invalid dependency: %v", err)
		return
	}

	files, err := readProjectFiles(dir, settings.Files)
	if err != nil {
		logger.Errorf("failed to read %s: %v", dir, err)
		return
	}
	logger.Debugf("Read %d files from %s", len(files), dir)

	updated, err := it.command.Execute(ctx, settings, commands.UpdateInput{
		Files:        files,
		Dependencies: []entities.Dependency{dependency},
	})
	if err != nil {
		logger.Errorf("Update failed: %v", err)
		return
	}

	if write, _ := cmd.Flags().GetBool("write"); write {
		if writeErr := writeProjectFiles(dir, updated); writeErr != nil {
			logger.Errorf("failed to write files: %v", writeErr)
			return
		}
		for _, file := range updated {
			logger.Infof("Wrote %s", filepath.Join(dir, file.Name))
		}
		return
	}

	out := cmd.OutOrStdout()
	for _, file := range updated {
		_, _ = fmt.Fprintf(out, "==> %s <==\n%s", file.Name, file.Content)
		if !strings.HasSuffix(file.Content, "\n") {
			_, _ = fmt.Fprintln(out)
		}
	}
}

// AddFlags adds the update-specific flags to the given Cobra command.
func (it *UpdateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("dependency", "", "Name of the dependency to update (required)")
	cmd.Flags().String("version", "", "Target version (required)")
	cmd.Flags().String("previous-version", "", "Currently locked version")
	cmd.Flags().StringArray("requirement", nil,
		"Requirement change as file=old:new (repeatable, leave a side empty when unset)")
	cmd.Flags().String("package-manager", "", "Package manager of the dependency (default: pip)")
	cmd.Flags().Bool("write", false, "Write changed files back instead of printing them")
}

func dependencyFromFlags(cmd *cobra.Command) (entities.Dependency, error) {
	name, _ := cmd.Flags().GetString("dependency")
	if name == "" {
		return entities.Dependency{}, errors.New("--dependency is required")
	}
	version, _ := cmd.Flags().GetString("version")
	if version == "" {
		return entities.Dependency{}, errors.New("--version is required")
	}
	previousVersion, _ := cmd.Flags().GetString("previous-version")
	packageManager, _ := cmd.Flags().GetString("package-manager")
	changes, _ := cmd.Flags().GetStringArray("requirement")

	dependency := entities.Dependency{
		Name:            name,
		Version:         version,
		PreviousVersion: previousVersion,
		PackageManager:  packageManager,
	}
	for _, change := range changes {
		previous, current, err := parseRequirementChange(change)
		if err != nil {
			return entities.Dependency{}, err
		}
		dependency.PreviousRequirements = append(dependency.PreviousRequirements, previous)
		dependency.Requirements = append(dependency.Requirements, current)
	}
	return dependency, nil
}

// parseRequirementChange reads "file=old:new". An empty side means the file
// carries no explicit requirement string on that side.
func parseRequirementChange(change string) (entities.Requirement, entities.Requirement, error) {
	file, specs, ok := strings.Cut(change, "=")
	if !ok || file == "" {
		return entities.Requirement{}, entities.Requirement{}, fmt.Errorf("requirement %q is not file=old:new", change)
	}
	oldSpec, newSpec, ok := strings.Cut(specs, ":")
	if !ok {
		return entities.Requirement{}, entities.Requirement{}, fmt.Errorf("requirement %q is not file=old:new", change)
	}
	return requirementFor(file, oldSpec), requirementFor(file, newSpec), nil
}

func requirementFor(file, spec string) entities.Requirement {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return entities.NewImplicitRequirement(file)
	}
	return entities.NewRequirement(file, spec)
}

// readProjectFiles collects manifests, requirement files and supporting
// build scripts below dir, skipping hidden directories.
func readProjectFiles(dir string, settings entities.FileSettings) ([]entities.ManagedFile, error) {
	patterns := make([]glob.Glob, 0, len(settings.Manifests)+len(settings.Supporting))
	for _, pattern := range append(append([]string{}, settings.Manifests...), settings.Supporting...) {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, compiled)
	}

	var files []entities.ManagedFile
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if path != dir && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasSuffix(name, ".txt") && !matchesAny(patterns, name) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, entities.NewManagedFile(name, string(content)))
		return nil
	})
	return files, err
}

func matchesAny(patterns []glob.Glob, name string) bool {
	for _, pattern := range patterns {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

// writeProjectFiles writes every file and reports all failures together.
func writeProjectFiles(dir string, files []entities.ManagedFile) error {
	var err error
	for _, file := range files {
		target := filepath.Join(dir, filepath.FromSlash(file.Name))
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(target); statErr == nil {
			mode = info.Mode().Perm()
		}
		err = multierr.Append(err, os.WriteFile(target, []byte(file.Content), mode))
	}
	return err
}

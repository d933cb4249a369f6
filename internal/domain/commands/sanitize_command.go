package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	infraRepos "github.com/rios0rios0/lockbump/internal/infrastructure/repositories"
)

// Sanitize is the interface for the sanitize command.
type Sanitize interface {
	Execute(ctx context.Context, settings *entities.Settings, file entities.ManagedFile) (entities.SanitizedText, error)
}

// SanitizeCommand rewrites a single build script with the sanitizer that supports it.
type SanitizeCommand struct {
	sanitizerRegistry *infraRepos.SanitizerRegistry
}

// NewSanitizeCommand creates a new SanitizeCommand.
func NewSanitizeCommand(sanitizerRegistry *infraRepos.SanitizerRegistry) *SanitizeCommand {
	return &SanitizeCommand{sanitizerRegistry: sanitizerRegistry}
}

// Execute returns the sanitized text. It fails only when no sanitizer supports
// the file; degraded output is reported through the result.
func (it *SanitizeCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	file entities.ManagedFile,
) (entities.SanitizedText, error) {
	sanitizer := it.sanitizerRegistry.ForFile(file.Name, settings.Sanitizer)
	if sanitizer == nil {
		return entities.SanitizedText{}, fmt.Errorf(
			"no sanitizer supports %q (available: %v)", file.Name, it.sanitizerRegistry.Names(),
		)
	}
	return sanitizer.Sanitize(ctx, file), nil
}

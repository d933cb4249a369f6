//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// StubSanitizeCommand is a stub implementation of commands.Sanitize.
type StubSanitizeCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           entities.SanitizedText
	LastSettings     *entities.Settings
	LastFile         entities.ManagedFile
}

var _ commands.Sanitize = (*StubSanitizeCommand)(nil)

func (s *StubSanitizeCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	file entities.ManagedFile,
) (entities.SanitizedText, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastFile = file
	return s.Result, s.ExecuteErr
}

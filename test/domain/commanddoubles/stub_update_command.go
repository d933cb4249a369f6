//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// StubUpdateCommand is a stub implementation of commands.Update.
type StubUpdateCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Files            []entities.ManagedFile
	LastSettings     *entities.Settings
	LastInput        commands.UpdateInput
}

var _ commands.Update = (*StubUpdateCommand)(nil)

func (s *StubUpdateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	input commands.UpdateInput,
) ([]entities.ManagedFile, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastInput = input
	return s.Files, s.ExecuteErr
}

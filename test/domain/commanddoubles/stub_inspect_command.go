//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/commands"
	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// StubInspectCommand is a stub implementation of commands.Inspect.
type StubInspectCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Report           *commands.InspectReport
	LastFile         entities.ManagedFile
}

var _ commands.Inspect = (*StubInspectCommand)(nil)

func (s *StubInspectCommand) Execute(_ context.Context, file entities.ManagedFile) (*commands.InspectReport, error) {
	s.ExecuteCallCount++
	s.LastFile = file
	return s.Report, s.ExecuteErr
}

package repositories

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// WorkspaceRepository provides isolated scratch directories for resolver runs.
// A workspace is owned by exactly one update run from Acquire until Release.
type WorkspaceRepository interface {
	// Acquire creates a fresh, empty workspace.
	Acquire(ctx context.Context) (*entities.Workspace, error)

	// Release removes the workspace and everything inside it.
	Release(workspace *entities.Workspace) error

	// WriteFile stores content at name, relative to the workspace root.
	WriteFile(workspace *entities.Workspace, name, content string) error

	// ReadFile returns the content stored at name, relative to the workspace root.
	ReadFile(workspace *entities.Workspace, name string) (string, error)
}

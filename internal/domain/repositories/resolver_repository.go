package repositories

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// ResolverRepository runs an external lock resolver inside a workspace.
// It writes the compiled output file into the workspace and does not retry.
type ResolverRepository interface {
	// Name returns the package manager the resolver serves (e.g. "pip").
	Name() string

	// Compile resolves request.ManifestFile into request.OutputFile.
	Compile(
		ctx context.Context,
		workspace *entities.Workspace,
		request entities.CompileRequest,
	) (*entities.CompileResult, error)
}

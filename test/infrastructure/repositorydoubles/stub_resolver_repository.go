//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/domain/repositories"
)

// StubResolverRepository implements repositories.ResolverRepository by writing
// canned output files into the workspace.
type StubResolverRepository struct {
	// --- identity ---
	ManagerName string

	// --- Compile ---
	Outputs    map[string]string // output file -> content written on every call
	CompileErr error
	// spy: requests received
	Calls []entities.CompileRequest
	// spy: workspace file contents at the first call, for each name in Capture
	Capture  []string
	Captured map[string]string
}

var _ repositories.ResolverRepository = (*StubResolverRepository)(nil)

func (r *StubResolverRepository) Name() string { return r.ManagerName }

func (r *StubResolverRepository) Compile(
	_ context.Context,
	workspace *entities.Workspace,
	request entities.CompileRequest,
) (*entities.CompileResult, error) {
	r.Calls = append(r.Calls, request)
	if r.Captured == nil {
		r.Captured = make(map[string]string)
		for _, name := range r.Capture {
			data, err := os.ReadFile(filepath.Join(workspace.Path, name))
			if err == nil {
				r.Captured[name] = string(data)
			}
		}
	}
	if r.CompileErr != nil {
		return nil, r.CompileErr
	}

	if output, ok := r.Outputs[request.OutputFile]; ok {
		target := filepath.Join(workspace.Path, request.OutputFile)
		if err := os.WriteFile(target, []byte(output), 0o600); err != nil {
			return nil, err
		}
	}
	return &entities.CompileResult{Output: "stub"}, nil
}

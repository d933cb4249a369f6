package repositories

import (
	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
	"github.com/rios0rios0/lockbump/internal/infrastructure/repositories/workspace"
)

// WorkspaceFactory creates the workspace repository for a run.
type WorkspaceFactory func(settings entities.WorkspaceSettings) domainRepos.WorkspaceRepository

// NewWorkspaceFactory returns a factory for local filesystem workspaces.
func NewWorkspaceFactory() WorkspaceFactory {
	return func(settings entities.WorkspaceSettings) domainRepos.WorkspaceRepository {
		return workspace.NewLocalWorkspaceRepository(settings)
	}
}

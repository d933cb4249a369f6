package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const (
	dirPermissions  = 0o700
	filePermissions = 0o600
)

// LocalWorkspaceRepository creates workspaces as directories on the local
// filesystem under a configured root.
type LocalWorkspaceRepository struct {
	root   string
	prefix string
}

// NewLocalWorkspaceRepository creates a repository rooted at settings.Root,
// or at the system temp directory when no root is configured.
func NewLocalWorkspaceRepository(settings entities.WorkspaceSettings) *LocalWorkspaceRepository {
	root := settings.Root
	if root == "" {
		root = os.TempDir()
	}
	return &LocalWorkspaceRepository{root: root, prefix: settings.Prefix}
}

// Acquire creates a new uniquely named directory under the root.
func (it *LocalWorkspaceRepository) Acquire(ctx context.Context) (*entities.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrWorkspaceAcquisitionFailed, err)
	}
	if err := os.MkdirAll(it.root, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrWorkspaceAcquisitionFailed, err)
	}

	id := uuid.NewString()
	name := id
	if it.prefix != "" {
		name = it.prefix + "-" + id
	}
	dir := filepath.Join(it.root, name)
	if err := os.Mkdir(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrWorkspaceAcquisitionFailed, err)
	}

	logger.Debugf("[workspace] Acquired %s", dir)
	return &entities.Workspace{ID: id, Path: dir}, nil
}

// Release removes the workspace directory tree.
func (it *LocalWorkspaceRepository) Release(workspace *entities.Workspace) error {
	if workspace == nil || workspace.Path == "" {
		return nil
	}
	if _, err := it.contained(workspace, "."); err != nil {
		return err
	}
	if err := os.RemoveAll(workspace.Path); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", workspace.ID, err)
	}
	logger.Debugf("[workspace] Released %s", workspace.Path)
	return nil
}

// WriteFile stores content at name, creating parent directories as needed.
func (it *LocalWorkspaceRepository) WriteFile(workspace *entities.Workspace, name, content string) error {
	target, err := it.contained(workspace, name)
	if err != nil {
		return err
	}
	if mkErr := os.MkdirAll(filepath.Dir(target), dirPermissions); mkErr != nil {
		return fmt.Errorf("failed to create directory for %q: %w", name, mkErr)
	}
	if writeErr := os.WriteFile(target, []byte(content), filePermissions); writeErr != nil {
		return fmt.Errorf("failed to write %q: %w", name, writeErr)
	}
	return nil
}

// ReadFile returns the content stored at name.
func (it *LocalWorkspaceRepository) ReadFile(workspace *entities.Workspace, name string) (string, error) {
	target, err := it.contained(workspace, name)
	if err != nil {
		return "", err
	}
	data, readErr := os.ReadFile(target)
	if readErr != nil {
		return "", fmt.Errorf("failed to read %q: %w", name, readErr)
	}
	return string(data), nil
}

// contained resolves name inside the workspace, rejecting paths that escape
// it and workspaces that are not under the configured root.
func (it *LocalWorkspaceRepository) contained(workspace *entities.Workspace, name string) (string, error) {
	if workspace == nil {
		return "", errors.New("no workspace")
	}
	root, err := filepath.Abs(it.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	base, err := filepath.Abs(workspace.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	if !within(root, base) || base == root {
		return "", fmt.Errorf("workspace %q is outside %q", workspace.Path, it.root)
	}

	target := filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(name, "/")))
	if !within(base, target) {
		return "", fmt.Errorf("path %q escapes the workspace", name)
	}
	return target, nil
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

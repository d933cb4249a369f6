package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrSanitizationDegraded is non-fatal: the sanitizer returned partial output.
	ErrSanitizationDegraded = errors.New("sanitization degraded")
	// ErrWorkspaceAcquisitionFailed means no scratch workspace could be created.
	ErrWorkspaceAcquisitionFailed = errors.New("workspace acquisition failed")
	// ErrResolverTimeout means the resolver subprocess exceeded its time budget.
	ErrResolverTimeout = errors.New("resolver timed out")
	// ErrResolverNonZeroExit means the resolver subprocess exited unsuccessfully.
	ErrResolverNonZeroExit = errors.New("resolver exited with non-zero status")
	// ErrRequirementNotFound means a requirement string could not be located in a file.
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrNoOpUpdate means the update produced no changed files.
	ErrNoOpUpdate = errors.New("no files changed")
)

// UpdateError carries the dependency and file a fatal condition was raised for.
type UpdateError struct {
	Dependency string
	File       string
	Err        error
}

// NewUpdateError wraps err with the dependency and file it relates to.
func NewUpdateError(dependency, file string, err error) *UpdateError {
	return &UpdateError{Dependency: dependency, File: file, Err: err}
}

func (e *UpdateError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("updating %s: %v", e.Dependency, e.Err)
	}
	return fmt.Sprintf("updating %s in %s: %v", e.Dependency, e.File, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

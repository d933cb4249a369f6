package repositories

import (
	"context"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// SanitizerRepository rewrites a build script into an inert equivalent that
// can be handed to the resolver without executing project code.
type SanitizerRepository interface {
	// Name returns the sanitizer identifier (e.g. "gemspec", "setup.py").
	Name() string

	// Supports returns true if the sanitizer handles the given file name.
	Supports(fileName string) bool

	// Sanitize never fails: on parser or internal errors it returns
	// best-effort text with Degraded set.
	Sanitize(ctx context.Context, file entities.ManagedFile) entities.SanitizedText
}

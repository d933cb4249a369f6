//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"
	"sync"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/domain/repositories"
)

// SpySanitizerRepository implements repositories.SanitizerRepository as a configurable spy.
type SpySanitizerRepository struct {
	// --- identity ---
	SanitizerName string
	Suffix        string // file name suffix the spy supports

	// --- Sanitize ---
	Result entities.SanitizedText
	// spy: files received
	mu        sync.Mutex
	Sanitized []entities.ManagedFile
}

var _ repositories.SanitizerRepository = (*SpySanitizerRepository)(nil)

func (s *SpySanitizerRepository) Name() string { return s.SanitizerName }

func (s *SpySanitizerRepository) Supports(fileName string) bool {
	return strings.HasSuffix(fileName, s.Suffix)
}

func (s *SpySanitizerRepository) Sanitize(_ context.Context, file entities.ManagedFile) entities.SanitizedText {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sanitized = append(s.Sanitized, file)
	return s.Result
}

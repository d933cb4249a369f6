package repositories

import (
	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
)

// SanitizerFactory is a constructor function that creates a SanitizerRepository from the sanitizer settings.
type SanitizerFactory func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository

// SanitizerRegistry manages all registered build-script sanitizers.
type SanitizerRegistry struct {
	factories []SanitizerFactory
}

// NewSanitizerRegistry creates an empty sanitizer registry.
func NewSanitizerRegistry() *SanitizerRegistry {
	return &SanitizerRegistry{}
}

// Register adds a sanitizer factory. Earlier registrations win when more than
// one sanitizer supports a file.
func (r *SanitizerRegistry) Register(factory SanitizerFactory) {
	r.factories = append(r.factories, factory)
}

// All returns a configured instance of every registered sanitizer.
func (r *SanitizerRegistry) All(settings entities.SanitizerSettings) []domainRepos.SanitizerRepository {
	result := make([]domainRepos.SanitizerRepository, 0, len(r.factories))
	for _, factory := range r.factories {
		result = append(result, factory(settings))
	}
	return result
}

// ForFile returns the sanitizer that handles fileName, or nil if none does.
func (r *SanitizerRegistry) ForFile(fileName string, settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
	for _, sanitizer := range r.All(settings) {
		if sanitizer.Supports(fileName) {
			return sanitizer
		}
	}
	return nil
}

// Names returns the names of the registered sanitizers in registration order.
func (r *SanitizerRegistry) Names() []string {
	sanitizers := r.All(entities.SanitizerSettings{})
	names := make([]string, 0, len(sanitizers))
	for _, sanitizer := range sanitizers {
		names = append(names, sanitizer.Name())
	}
	return names
}

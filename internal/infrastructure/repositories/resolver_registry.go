package repositories

import (
	"fmt"
	"slices"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
)

// ResolverFactory is a constructor function that creates a ResolverRepository from the resolver settings.
type ResolverFactory func(settings entities.ResolverSettings) domainRepos.ResolverRepository

// ResolverRegistry manages the resolver implementation of each package manager.
type ResolverRegistry struct {
	resolvers      map[string]ResolverFactory
	defaultManager string
}

// NewResolverRegistry creates an empty resolver registry. Dependencies without
// a package manager tag are resolved with defaultManager.
func NewResolverRegistry(defaultManager string) *ResolverRegistry {
	return &ResolverRegistry{
		resolvers:      make(map[string]ResolverFactory),
		defaultManager: defaultManager,
	}
}

// Register adds a resolver factory under the given package manager (e.g. "pip").
func (r *ResolverRegistry) Register(name string, factory ResolverFactory) {
	r.resolvers[name] = factory
}

// Get returns a configured resolver for the given package manager.
func (r *ResolverRegistry) Get(name string, settings entities.ResolverSettings) (domainRepos.ResolverRepository, error) {
	if name == "" {
		name = r.defaultManager
	}
	factory, ok := r.resolvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown package manager: %q", name)
	}
	return factory(settings), nil
}

// Names returns the sorted list of registered package managers.
func (r *ResolverRegistry) Names() []string {
	names := make([]string, 0, len(r.resolvers))
	for name := range r.resolvers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

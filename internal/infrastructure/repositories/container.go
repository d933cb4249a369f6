package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
	"github.com/rios0rios0/lockbump/internal/infrastructure/repositories/resolver"
	"github.com/rios0rios0/lockbump/internal/infrastructure/repositories/sanitizer"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register resolver registry with all package manager resolvers
	if err := container.Provide(func() *ResolverRegistry {
		reg := NewResolverRegistry(resolver.PackageManager)
		reg.Register(resolver.PackageManager, func(settings entities.ResolverSettings) domainRepos.ResolverRepository {
			return resolver.NewPipCompileResolverRepository(settings)
		})
		return reg
	}); err != nil {
		return err
	}

	// Register sanitizer registry with all build-script sanitizers
	if err := container.Provide(func() *SanitizerRegistry {
		reg := NewSanitizerRegistry()
		reg.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewGemspecSanitizer(settings)
		})
		reg.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewSetupFileSanitizer(settings)
		})
		reg.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewSetupCfgSanitizer(settings)
		})
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(NewWorkspaceFactory); err != nil {
		return err
	}

	return nil
}

//go:build unit

package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/lockbump/internal/infrastructure/repositories"
	"github.com/rios0rios0/lockbump/internal/infrastructure/repositories/sanitizer"
	"github.com/rios0rios0/lockbump/test/infrastructure/repositorydoubles"
)

func TestSanitizerRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should pick the first sanitizer supporting the file", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewSanitizerRegistry()
		registry.Register(func(entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return &repositorydoubles.SpySanitizerRepository{SanitizerName: "first", Suffix: ".gemspec"}
		})
		registry.Register(func(entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return &repositorydoubles.SpySanitizerRepository{SanitizerName: "second", Suffix: ".gemspec"}
		})

		// when
		found := registry.ForFile("lib/example.gemspec", entities.SanitizerSettings{})

		// then
		require.NotNil(t, found)
		assert.Equal(t, "first", found.Name())
	})

	t.Run("should return nil when no sanitizer supports the file", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewSanitizerRegistry()
		registry.Register(func(entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return &repositorydoubles.SpySanitizerRepository{SanitizerName: "gemspec", Suffix: ".gemspec"}
		})

		// when
		found := registry.ForFile("requirements.txt", entities.SanitizerSettings{})

		// then
		assert.Nil(t, found)
	})

	t.Run("should dispatch the built-in sanitizers by file name", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewSanitizerRegistry()
		registry.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewGemspecSanitizer(settings)
		})
		registry.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewSetupFileSanitizer(settings)
		})
		registry.Register(func(settings entities.SanitizerSettings) domainRepos.SanitizerRepository {
			return sanitizer.NewSetupCfgSanitizer(settings)
		})

		// when
		gemspec := registry.ForFile("example.gemspec", entities.SanitizerSettings{})
		setupFile := registry.ForFile("sub/setup.py", entities.SanitizerSettings{})
		setupCfg := registry.ForFile("setup.cfg", entities.SanitizerSettings{})

		// then
		require.NotNil(t, gemspec)
		require.NotNil(t, setupFile)
		require.NotNil(t, setupCfg)
		assert.Equal(t, "gemspec", gemspec.Name())
		assert.Equal(t, []string{"gemspec", "setup.py", "setup.cfg"}, registry.Names())
	})
}

//go:build unit

package repositories_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	domainRepos "github.com/rios0rios0/lockbump/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/lockbump/internal/infrastructure/repositories"
	"github.com/rios0rios0/lockbump/test/infrastructure/repositorydoubles"
)

func TestResolverRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should build the registered resolver with the given settings", func(t *testing.T) {
		t.Parallel()

		// given
		var received entities.ResolverSettings
		registry := infraRepos.NewResolverRegistry("pip")
		registry.Register("pip", func(settings entities.ResolverSettings) domainRepos.ResolverRepository {
			received = settings
			return &repositorydoubles.StubResolverRepository{ManagerName: "pip"}
		})
		settings := entities.ResolverSettings{Timeout: time.Minute}

		// when
		resolver, err := registry.Get("pip", settings)

		// then
		require.NoError(t, err)
		assert.Equal(t, "pip", resolver.Name())
		assert.Equal(t, time.Minute, received.Timeout)
	})

	t.Run("should fall back to the default package manager", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewResolverRegistry("pip")
		registry.Register("pip", func(entities.ResolverSettings) domainRepos.ResolverRepository {
			return &repositorydoubles.StubResolverRepository{ManagerName: "pip"}
		})

		// when
		resolver, err := registry.Get("", entities.ResolverSettings{})

		// then
		require.NoError(t, err)
		assert.Equal(t, "pip", resolver.Name())
	})

	t.Run("should reject an unknown package manager", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewResolverRegistry("pip")

		// when
		resolver, err := registry.Get("npm", entities.ResolverSettings{})

		// then
		require.Error(t, err)
		assert.Nil(t, resolver)
		assert.Contains(t, err.Error(), `unknown package manager: "npm"`)
	})

	t.Run("should list registered package managers in order", func(t *testing.T) {
		t.Parallel()

		// given
		registry := infraRepos.NewResolverRegistry("pip")
		for _, name := range []string{"uv", "pip"} {
			registry.Register(name, func(entities.ResolverSettings) domainRepos.ResolverRepository {
				return &repositorydoubles.StubResolverRepository{ManagerName: name}
			})
		}

		// when
		names := registry.Names()

		// then
		assert.Equal(t, []string{"pip", "uv"}, names)
	})
}

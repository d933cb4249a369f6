//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveToken(t *testing.T) {
	t.Run("should return empty string for empty input", func(t *testing.T) {
		t.Parallel()

		// given
		raw := ""

		// when
		result := entities.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "pypi-abc123xyz"

		// when
		result := entities.ResolveToken(raw)

		// then
		assert.Equal(t, "pypi-abc123xyz", result)
	})

	t.Run("should expand environment variable reference", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("LOCKBUMP_TEST_TOKEN", "my-secret-token")
		raw := "${LOCKBUMP_TEST_TOKEN}"

		// when
		result := entities.ResolveToken(raw)

		// then
		assert.Equal(t, "my-secret-token", result)
	})

	t.Run("should return empty for unset env var", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "${DEFINITELY_NOT_SET_VAR_12345}"

		// when
		result := entities.ResolveToken(raw)

		// then
		assert.Empty(t, result)
	})

	t.Run("should read token from file when path exists", func(t *testing.T) {
		t.Parallel()

		// given
		tokenFile := filepath.Join(t.TempDir(), "token.key")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-based-token  \n"), 0o600))

		// when
		result := entities.ResolveToken(tokenFile)

		// then
		assert.Equal(t, "file-based-token", result)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("should accept the defaults", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()

		// when
		err := entities.Validate(settings)

		// then
		assert.NoError(t, err)
	})

	t.Run("should report every invalid value at once", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()
		settings.Resolver.Timeout = -time.Second
		settings.Workspace.Prefix = "a/b"
		settings.Credentials = []entities.Credential{
			{Type: entities.CredentialTypeGitSource},
			{Type: entities.CredentialTypePythonIndex},
			{Type: "ftp", Host: "example.com"},
			{Host: "example.com"},
		}

		// when
		err := entities.Validate(settings)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolver.timeout must not be negative")
		assert.Contains(t, err.Error(), "must not contain path separators")
		assert.Contains(t, err.Error(), "credentials[0].host is required")
		assert.Contains(t, err.Error(), "credentials[1].index_url is required")
		assert.Contains(t, err.Error(), `credentials[2].type "ftp" is not supported`)
		assert.Contains(t, err.Error(), "credentials[3].type is required")
	})
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	t.Run("should load a file and fill in defaults", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "lockbump.yaml")
		content := `resolver:
  command: ["python", "-m", "piptools", "compile"]
  timeout: 30s
  reannotate: false
credentials:
  - type: python_index
    index_url: https://pypi.example.com/simple
    token: inline-token
    replaces_base: true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"python", "-m", "piptools", "compile"}, settings.Resolver.Command)
		assert.Equal(t, 30*time.Second, settings.Resolver.Timeout)
		assert.False(t, settings.Resolver.ShouldReannotate())
		assert.Equal(t, "lockbump", settings.Workspace.Prefix)
		assert.Equal(t, "0.0.1", settings.Sanitizer.ReplacementVersion)
		require.Len(t, settings.Credentials, 1)
		assert.True(t, settings.Credentials[0].ReplacesBase)
		assert.Equal(t, "inline-token", settings.Credentials[0].Secret())
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "missing.yaml")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Nil(t, settings)
	})

	t.Run("should fail for invalid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("resolver: [unclosed"), 0o600))

		// when
		_, err := entities.NewSettings(path)

		// then
		require.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	t.Run("should reannotate and use pip-compile by default", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()

		// when
		reannotate := settings.Resolver.ShouldReannotate()

		// then
		assert.True(t, reannotate)
		assert.Equal(t, []string{"pip-compile"}, settings.Resolver.Command)
		assert.Equal(t, 10*time.Minute, settings.Resolver.Timeout)
	})
}

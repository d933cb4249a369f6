//go:build unit

package lockfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockbump/internal/lockfile"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("should split the header from aligned entries", func(t *testing.T) {
		t.Parallel()

		// given
		content := readFixture(t, "inline_original.txt")

		// when
		lock := lockfile.Parse(content)

		// then
		assert.Len(t, lock.Header.Lines, 6)
		entries := lock.Entries()
		require.Len(t, entries, 4)
		assert.Equal(t, "attrs", entries[0].Name)
		assert.Equal(t, "17.3.0", entries[0].Version)
		assert.Nil(t, entries[0].Via)
		assert.Equal(t, []string{"mock"}, entries[2].Via)
		assert.True(t, lock.Style.Annotated)
		assert.False(t, lock.Style.Hashed)
		assert.Equal(t, lockfile.PlacementInline, lock.Style.Placement)
		assert.Equal(t, 26, lock.Style.ViaColumn)
	})

	t.Run("should collect hashes and continuation annotations", func(t *testing.T) {
		t.Parallel()

		// given
		content := readFixture(t, "hashed_original.txt")

		// when
		lock := lockfile.Parse(content)

		// then
		entries := lock.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, []string{
			"sha256:1c7960ccfd6a005cd9f7ba884e6316b5e430a3f1a6c37c5f87d8b43f83b54ec9",
			"sha256:a17a9573a6f475c99b551c0e0a812707ddda1ec9653bed04c13841404ed6f450",
		}, entries[0].Hashes)
		assert.Equal(t, []string{"-r requirements.in"}, entries[0].Via)
		assert.True(t, lock.Style.Hashed)
		assert.True(t, lock.Style.ReferencesFiles)
		assert.Equal(t, lockfile.PlacementContinuation, lock.Style.Placement)
	})

	t.Run("should read multi-line annotation lists", func(t *testing.T) {
		t.Parallel()

		// given
		content := readFixture(t, "multiline_fresh.txt")

		// when
		lock := lockfile.Parse(content)

		// then
		entries := lock.Entries()
		require.Len(t, entries, 4)
		assert.Equal(t, []string{"mock", "pbr"}, entries[3].Via)
		assert.Equal(t, lockfile.PlacementMultiline, lock.Style.Placement)
	})

	t.Run("should keep editable and option lines as raw items", func(t *testing.T) {
		t.Parallel()

		// given
		content := "-e file:.\n--index-url https://pypi.org/simple\nattrs==17.3.0\n"

		// when
		lock := lockfile.Parse(content)

		// then
		require.Len(t, lock.Items, 3)
		assert.True(t, lock.Items[0].Editable)
		assert.Nil(t, lock.Items[1].Entry)
		require.NotNil(t, lock.Items[2].Entry)
		assert.Equal(t, "attrs==17.3.0", lock.Items[2].Entry.Declaration)
	})

	t.Run("should keep extras and markers in the declaration", func(t *testing.T) {
		t.Parallel()

		// given
		content := "requests[security]==2.18.4 ; python_version < \"3.0\"\n"

		// when
		lock := lockfile.Parse(content)

		// then
		entries := lock.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "requests", entries[0].Name)
		assert.Equal(t, "2.18.4", entries[0].Version)
		assert.Equal(t, "requests[security]==2.18.4 ; python_version < \"3.0\"", entries[0].Declaration)
	})
}

func TestNormaliseName(t *testing.T) {
	t.Parallel()

	t.Run("should lowercase and collapse separators", func(t *testing.T) {
		t.Parallel()

		// given
		names := []string{"Attrs", "zope.interface", "Zope__Interface", "ruamel-.yaml"}

		// when
		var normalised []string
		for _, name := range names {
			normalised = append(normalised, lockfile.NormaliseName(name))
		}

		// then
		assert.Equal(t, []string{"attrs", "zope-interface", "zope-interface", "ruamel-yaml"}, normalised)
	})
}

func TestIncludesPackage(t *testing.T) {
	t.Parallel()

	t.Run("should find a transitive pin regardless of spelling", func(t *testing.T) {
		t.Parallel()

		// given
		content := readFixture(t, "inline_original.txt")

		// when
		found := lockfile.IncludesPackage(content, "PBR")

		// then
		assert.True(t, found)
	})

	t.Run("should not match packages only named in annotations", func(t *testing.T) {
		t.Parallel()

		// given
		content := "pbr==4.0.2                # via mock\n"

		// when
		found := lockfile.IncludesPackage(content, "mock")

		// then
		assert.False(t, found)
	})
}

//go:build unit

package requirements_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/requirements"
)

func TestPatch(t *testing.T) {
	t.Parallel()

	t.Run("should replace only the specifier and keep the original spelling", func(t *testing.T) {
		t.Parallel()

		// given
		text := "Attrs<=17.4.0\n"

		// when
		patched, err := requirements.Patch(text, "attrs", "<=17.4.0", "<=18.1.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, "Attrs<=18.1.0\n", patched)
	})

	t.Run("should match specifier sets regardless of order and spacing", func(t *testing.T) {
		t.Parallel()

		// given
		text := "django >= 1.11, < 2.0  # web framework\nrequests==2.18.4\n"

		// when
		patched, err := requirements.Patch(text, "Django", "<2.0,>=1.11", ">=1.11,<2.1")

		// then
		require.NoError(t, err)
		assert.Equal(t, "django >=1.11,<2.1  # web framework\nrequests==2.18.4\n", patched)
	})

	t.Run("should keep extras markers and hashes", func(t *testing.T) {
		t.Parallel()

		// given
		text := "requests[security]==2.18.4 ; python_version < \"3.0\" --hash=sha256:abcd\r\n"

		// when
		patched, err := requirements.Patch(text, "requests", "==2.18.4", "==2.19.1")

		// then
		require.NoError(t, err)
		assert.Equal(t, "requests[security]==2.19.1 ; python_version < \"3.0\" --hash=sha256:abcd\r\n", patched)
	})

	t.Run("should leave option lines alone", func(t *testing.T) {
		t.Parallel()

		// given
		text := "-r base.in\n--no-binary attrs\nattrs==17.3.0\n"

		// when
		patched, err := requirements.Patch(text, "attrs", "==17.3.0", "==18.1.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, "-r base.in\n--no-binary attrs\nattrs==18.1.0\n", patched)
	})

	t.Run("should return the text unchanged when the requirement does not change", func(t *testing.T) {
		t.Parallel()

		// given
		text := "attrs==1.0\n"

		// when
		patched, err := requirements.Patch(text, "attrs", "==1.0", "==1.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, text, patched)
	})

	t.Run("should fail when no declaration matches", func(t *testing.T) {
		t.Parallel()

		// given
		text := "attrs==17.3.0\n# attrs<=17.4.0\n"

		// when
		_, err := requirements.Patch(text, "attrs", "<=17.4.0", "<=18.1.0")

		// then
		require.ErrorIs(t, err, entities.ErrRequirementNotFound)
	})

	t.Run("should fail when an unchanged requirement is not declared", func(t *testing.T) {
		t.Parallel()

		// given
		text := "mock==2.0.0\n"

		// when
		_, err := requirements.Patch(text, "attrs", "==1.0", "==1.0")

		// then
		require.ErrorIs(t, err, entities.ErrRequirementNotFound)
	})

	t.Run("should fail when the requirement is declared more than once", func(t *testing.T) {
		t.Parallel()

		// given
		text := "attrs<=17.4.0\nmock\nAttrs <= 17.4.0  # again\n"

		// when
		_, err := requirements.Patch(text, "attrs", "<=17.4.0", "<=18.1.0")

		// then
		require.ErrorIs(t, err, entities.ErrRequirementNotFound)
		assert.Contains(t, err.Error(), "declared more than once")
	})
}

func TestFreeze(t *testing.T) {
	t.Parallel()

	t.Run("should pin unpinned and ranged declarations", func(t *testing.T) {
		t.Parallel()

		// given
		text := "attrs\nmock\nAttrs<=17.4.0  # pinned\n"

		// when
		frozen := requirements.Freeze(text, "attrs", "18.1.0")

		// then
		assert.Equal(t, "attrs==18.1.0\nmock\nAttrs==18.1.0  # pinned\n", frozen)
	})
}

func TestDeclares(t *testing.T) {
	t.Parallel()

	t.Run("should detect declarations by normalised name", func(t *testing.T) {
		t.Parallel()

		// given
		text := "-e file:.\nzope.interface>=4\n"

		// when
		declared := requirements.Declares(text, "Zope_Interface")

		// then
		assert.True(t, declared)
		assert.False(t, requirements.Declares(text, "file"))
	})
}

func TestChildRequirementFiles(t *testing.T) {
	t.Parallel()

	t.Run("should list referenced requirement and constraint files", func(t *testing.T) {
		t.Parallel()

		// given
		text := "-r base.in\n--requirement=shared.in\n-c constraints.txt\nattrs\n"

		// when
		files := requirements.ChildRequirementFiles(text)

		// then
		assert.Equal(t, []string{"base.in", "shared.in", "constraints.txt"}, files)
	})
}

func TestPatchOperators(t *testing.T) {
	t.Parallel()

	operators := []string{"==", "!=", "<=", "<", ">=", ">", "~="}
	for _, operator := range operators {
		t.Run("should patch requirements using "+operator, func(t *testing.T) {
			t.Parallel()

			// given
			text := "# pinned for the test suite\nAttrs" + operator + "17.4.0  # keep\nmock\n"

			// when
			patched, err := requirements.Patch(text, "attrs", operator+"17.4.0", operator+"18.1.0")

			// then
			require.NoError(t, err)
			assert.Equal(t, "# pinned for the test suite\nAttrs"+operator+"18.1.0  # keep\nmock\n", patched)
		})
	}
}

//go:build unit

package entities_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

func TestDependency_Direction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous string
		current  string
		want     entities.VersionDirection
	}{
		{name: "should detect an upgrade", previous: "17.3.0", current: "18.1.0", want: entities.DirectionUpgrade},
		{name: "should detect a downgrade", previous: "2.0.0", current: "1.9.0", want: entities.DirectionDowngrade},
		{name: "should detect an unchanged version", previous: "1.0.0", current: "1.0.0", want: entities.DirectionUnchanged},
		{name: "should compare short versions", previous: "1.2", current: "1.10", want: entities.DirectionUpgrade},
		{name: "should be unknown without a previous version", previous: "", current: "1.0.0", want: entities.DirectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			dependency := entities.Dependency{Name: "attrs", PreviousVersion: tt.previous, Version: tt.current}

			// when
			got := dependency.Direction()

			// then
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDependency_RequirementFor(t *testing.T) {
	t.Parallel()

	t.Run("should find requirement records by file", func(t *testing.T) {
		t.Parallel()

		// given
		dependency := entities.Dependency{
			Name:                 "attrs",
			Requirements:         []entities.Requirement{entities.NewRequirement("requirements.in", "<=18.1.0")},
			PreviousRequirements: []entities.Requirement{entities.NewImplicitRequirement("requirements.in")},
		}

		// when
		current, hasCurrent := dependency.RequirementFor("requirements.in")
		previous, hasPrevious := dependency.PreviousRequirementFor("requirements.in")
		_, hasOther := dependency.RequirementFor("other.in")

		// then
		assert.True(t, hasCurrent)
		assert.Equal(t, "<=18.1.0", current.RequirementString())
		assert.True(t, hasPrevious)
		assert.False(t, previous.HasRequirement())
		assert.Empty(t, previous.RequirementString())
		assert.False(t, hasOther)
		assert.False(t, dependency.IsSubDependency())
	})

	t.Run("should match file names regardless of a leading dot-slash", func(t *testing.T) {
		t.Parallel()

		// given
		dependency := entities.Dependency{
			Name:                 "attrs",
			Requirements:         []entities.Requirement{entities.NewRequirement("./requirements/test.in", "<=18.1.0")},
			PreviousRequirements: []entities.Requirement{entities.NewRequirement("requirements/test.in", "<=17.4.0")},
		}

		// when
		current, hasCurrent := dependency.RequirementFor("requirements/test.in")
		previous, hasPrevious := dependency.PreviousRequirementFor("./requirements/test.in")

		// then
		assert.True(t, hasCurrent)
		assert.Equal(t, "<=18.1.0", current.RequirementString())
		assert.True(t, hasPrevious)
		assert.Equal(t, "<=17.4.0", previous.RequirementString())
	})
}

func TestUpdateError(t *testing.T) {
	t.Parallel()

	t.Run("should name the dependency and file and unwrap to the cause", func(t *testing.T) {
		t.Parallel()

		// given
		err := entities.NewUpdateError("attrs", "requirements.txt", entities.ErrRequirementNotFound)

		// when
		message := err.Error()

		// then
		assert.Equal(t, "updating attrs in requirements.txt: requirement not found", message)
		assert.True(t, errors.Is(err, entities.ErrRequirementNotFound))
	})
}

func TestCredential_String(t *testing.T) {
	t.Parallel()

	t.Run("should never print the secret", func(t *testing.T) {
		t.Parallel()

		// given
		credential := entities.Credential{
			Type:     entities.CredentialTypeGitSource,
			Host:     "github.com",
			Password: "hunter2",
		}

		// when
		text := credential.String()

		// then
		assert.NotContains(t, text, "hunter2")
		assert.Contains(t, text, "github.com")
	})
}

func TestDependency_ChangeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous string
		current  string
		want     entities.ChangeType
	}{
		{name: "should detect a major change", previous: "17.3.0", current: "18.1.0", want: entities.ChangeMajor},
		{name: "should detect a minor change", previous: "1.2.0", current: "1.3.0", want: entities.ChangeMinor},
		{name: "should detect a patch change", previous: "1.2.0", current: "1.2.5", want: entities.ChangePatch},
		{name: "should detect a minor change on short versions", previous: "2.1", current: "2.2", want: entities.ChangeMinor},
		{name: "should not classify pre-release tags outside semver", previous: "1.0.0rc1", current: "1.0.0", want: entities.ChangeUnknown},
		{name: "should not classify without a previous version", previous: "", current: "1.0.0", want: entities.ChangeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			dependency := entities.Dependency{Name: "attrs", PreviousVersion: tt.previous, Version: tt.current}

			// when
			got := dependency.ChangeType()

			// then
			assert.Equal(t, tt.want, got)
		})
	}
}

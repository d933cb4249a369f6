//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"slices"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name                 string
	version              string
	previousVersion      string
	requirements         []entities.Requirement
	previousRequirements []entities.Requirement
	packageManager       string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder:     testkit.NewBaseBuilder(),
		name:            "attrs",
		version:         "18.1.0",
		previousVersion: "17.3.0",
		packageManager:  "pip",
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the target version.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithPreviousVersion sets the currently locked version.
func (b *DependencyBuilder) WithPreviousVersion(version string) *DependencyBuilder {
	b.previousVersion = version
	return b
}

// WithRequirement adds a requirement record with the same file on both sides
// of the update. A nil string means the file declares no explicit requirement.
func (b *DependencyBuilder) WithRequirement(file string, previous, current *string) *DependencyBuilder {
	b.previousRequirements = append(b.previousRequirements, entities.Requirement{File: file, Requirement: previous})
	b.requirements = append(b.requirements, entities.Requirement{File: file, Requirement: current})
	return b
}

// WithPackageManager sets the ecosystem tag.
func (b *DependencyBuilder) WithPackageManager(packageManager string) *DependencyBuilder {
	b.packageManager = packageManager
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() entities.Dependency {
	return entities.Dependency{
		Name:                 b.name,
		Version:              b.version,
		PreviousVersion:      b.previousVersion,
		Requirements:         slices.Clone(b.requirements),
		PreviousRequirements: slices.Clone(b.previousRequirements),
		PackageManager:       b.packageManager,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "attrs"
	b.version = "18.1.0"
	b.previousVersion = "17.3.0"
	b.requirements = nil
	b.previousRequirements = nil
	b.packageManager = "pip"
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder:          b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:                 b.name,
		version:              b.version,
		previousVersion:      b.previousVersion,
		requirements:         slices.Clone(b.requirements),
		previousRequirements: slices.Clone(b.previousRequirements),
		packageManager:       b.packageManager,
	}
}

// Ptr returns a pointer to s, for requirement strings.
func Ptr(s string) *string {
	return &s
}

package entities

import (
	"path"
	"strings"

	"golang.org/x/mod/semver"
)

// Requirement is one declaration of a dependency inside a single file.
// A nil Requirement string means the dependency is implicit (transitive) there.
type Requirement struct {
	File        string
	Requirement *string
	Groups      []string
	Source      *string
}

// NewRequirement builds a requirement record with an explicit requirement string.
func NewRequirement(file, requirement string) Requirement {
	return Requirement{File: file, Requirement: &requirement}
}

// NewImplicitRequirement builds a requirement record without a requirement string.
func NewImplicitRequirement(file string) Requirement {
	return Requirement{File: file}
}

// HasRequirement reports whether an explicit requirement string is present.
func (r Requirement) HasRequirement() bool {
	return r.Requirement != nil
}

// RequirementString returns the requirement string, or "" when implicit.
func (r Requirement) RequirementString() string {
	if r.Requirement == nil {
		return ""
	}
	return *r.Requirement
}

// Dependency is one logical dependency change an update run must realise.
type Dependency struct {
	Name                 string
	Version              string
	PreviousVersion      string
	Requirements         []Requirement
	PreviousRequirements []Requirement
	PackageManager       string // ecosystem tag, e.g. "pip"
}

// IsSubDependency is true when no manifest declares the dependency explicitly.
func (d Dependency) IsSubDependency() bool {
	return len(d.Requirements) == 0
}

// RequirementFor returns the new requirement record for the given file.
func (d Dependency) RequirementFor(file string) (Requirement, bool) {
	return findRequirement(d.Requirements, file)
}

// PreviousRequirementFor returns the previous requirement record for the given file.
func (d Dependency) PreviousRequirementFor(file string) (Requirement, bool) {
	return findRequirement(d.PreviousRequirements, file)
}

// findRequirement matches file names by their cleaned relative form, so
// "./requirements/test.in" and "requirements/test.in" name the same file.
func findRequirement(reqs []Requirement, file string) (Requirement, bool) {
	want := cleanFileName(file)
	for _, req := range reqs {
		if cleanFileName(req.File) == want {
			return req, true
		}
	}
	return Requirement{}, false
}

func cleanFileName(name string) string {
	return strings.TrimPrefix(path.Clean(name), "./")
}

// VersionDirection describes how the new version relates to the previous one.
type VersionDirection string

const (
	DirectionUpgrade   VersionDirection = "upgrade"
	DirectionDowngrade VersionDirection = "downgrade"
	DirectionUnchanged VersionDirection = "unchanged"
	DirectionUnknown   VersionDirection = "unknown"
)

// Direction compares PreviousVersion and Version. Versions that are not
// valid semver fall back to a plain string comparison.
func (d Dependency) Direction() VersionDirection {
	if d.PreviousVersion == "" || d.Version == "" {
		return DirectionUnknown
	}
	if d.PreviousVersion == d.Version {
		return DirectionUnchanged
	}

	previous := normalizeVersion(d.PreviousVersion)
	current := normalizeVersion(d.Version)

	var cmp int
	if semver.IsValid(previous) && semver.IsValid(current) {
		cmp = semver.Compare(current, previous)
	} else {
		cmp = strings.Compare(d.Version, d.PreviousVersion)
	}

	switch {
	case cmp > 0:
		return DirectionUpgrade
	case cmp < 0:
		return DirectionDowngrade
	default:
		return DirectionUnchanged
	}
}

// normalizeVersion ensures version has 'v' prefix for semver compatibility
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// ChangeType classifies a version change by the first semver component that differs.
type ChangeType string

const (
	ChangeMajor   ChangeType = "major"
	ChangeMinor   ChangeType = "minor"
	ChangePatch   ChangeType = "patch"
	ChangeUnknown ChangeType = "unknown"
)

// ChangeType returns the kind of change between PreviousVersion and Version.
// Versions that are not valid semver yield ChangeUnknown.
func (d Dependency) ChangeType() ChangeType {
	previous := normalizeVersion(d.PreviousVersion)
	current := normalizeVersion(d.Version)
	if d.PreviousVersion == "" || !semver.IsValid(previous) || !semver.IsValid(current) {
		return ChangeUnknown
	}

	if semver.Major(previous) != semver.Major(current) {
		return ChangeMajor
	}
	if semver.MajorMinor(previous) != semver.MajorMinor(current) {
		return ChangeMinor
	}
	return ChangePatch
}

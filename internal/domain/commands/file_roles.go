package commands

import (
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// fileRole is how the update treats a file. The order of the constants is the
// order in which changed files are returned.
type fileRole int

const (
	roleManifest fileRole = iota
	roleCompiled
	rolePlain
	roleSupporting
	rolePassthrough
)

const (
	manifestExtension = ".in"
	compiledExtension = ".txt"
)

// fileClassifier assigns roles from the configured glob patterns.
type fileClassifier struct {
	manifests  []glob.Glob
	supporting []glob.Glob
	compiled   map[string]bool
}

func newFileClassifier(settings entities.FileSettings, files []entities.ManagedFile) (*fileClassifier, error) {
	manifests, err := compileGlobs(settings.Manifests)
	if err != nil {
		return nil, err
	}
	supporting, err := compileGlobs(settings.Supporting)
	if err != nil {
		return nil, err
	}

	classifier := &fileClassifier{
		manifests:  manifests,
		supporting: supporting,
		compiled:   make(map[string]bool),
	}
	for _, file := range files {
		if classifier.isManifest(file.Name) {
			classifier.compiled[compiledName(file.Name)] = true
		}
	}
	return classifier, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, compiled)
	}
	return globs, nil
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (it *fileClassifier) isManifest(name string) bool {
	return matchesAny(it.manifests, cleanName(name))
}

func (it *fileClassifier) role(name string) fileRole {
	name = cleanName(name)
	switch {
	case it.isManifest(name):
		return roleManifest
	case it.compiled[name]:
		return roleCompiled
	case matchesAny(it.supporting, name):
		return roleSupporting
	case strings.HasSuffix(name, compiledExtension):
		return rolePlain
	default:
		return rolePassthrough
	}
}

// compiledName returns the lock file compiled from a manifest.
func compiledName(manifest string) string {
	name := cleanName(manifest)
	return strings.TrimSuffix(name, path.Ext(name)) + compiledExtension
}

func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean(name), "./")
}

package lockfile

import (
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormaliseName returns the canonical form of a Python package name:
// lowercase with runs of "-", "_" and "." collapsed into a single "-".
func NormaliseName(name string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// IncludesPackage reports whether content pins the named package.
func IncludesPackage(content, name string) bool {
	want := NormaliseName(name)
	for _, item := range Parse(content).Items {
		if item.Entry != nil && NormaliseName(item.Entry.Name) == want {
			return true
		}
	}
	return false
}

// Package requirements rewrites version specifiers in pip requirement files
// without disturbing the rest of each line.
package requirements

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"deps.dev/util/pypi"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/lockfile"
)

var (
	namePattern    = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)(\s*\[[^\]]*\])?`)
	commentPattern = regexp.MustCompile(`(^|\s)#`)
	optionPattern  = regexp.MustCompile(`\s(--|\\)`)
)

// declaration is a requirement line split into byte ranges.
type declaration struct {
	name      string
	specStart int // offset of the specifier within the line body
	specEnd   int
}

// Patch replaces the specifier of the declaration of name whose specifier
// set equals oldReq with newReq. Name spelling, extras, markers, options,
// comments and line endings are kept. Returns ErrRequirementNotFound when no
// declaration matches or when more than one does.
func Patch(text, name, oldReq, newReq string) (string, error) {
	want := lockfile.NormaliseName(name)
	wantSpec := specifierSet(oldReq)

	lines := strings.SplitAfter(text, "\n")
	match := -1
	var found declaration
	for index, line := range lines {
		body, _ := splitEnding(line)
		decl, ok := parseDeclaration(body)
		if !ok || lockfile.NormaliseName(decl.name) != want ||
			!slices.Equal(specifierSet(body[decl.specStart:decl.specEnd]), wantSpec) {
			continue
		}
		if match >= 0 {
			return "", fmt.Errorf("%w: %s%s is declared more than once", entities.ErrRequirementNotFound, name, oldReq)
		}
		match = index
		found = decl
	}

	if match < 0 {
		return "", fmt.Errorf("%w: %s%s", entities.ErrRequirementNotFound, name, oldReq)
	}
	if oldReq == newReq {
		return text, nil
	}

	body, ending := splitEnding(lines[match])
	lines[match] = body[:found.specStart] + newReq + body[found.specEnd:] + ending
	return strings.Join(lines, ""), nil
}

// Declares reports whether text declares the named package on any line.
func Declares(text, name string) bool {
	want := lockfile.NormaliseName(name)
	for _, line := range strings.SplitAfter(text, "\n") {
		body, _ := splitEnding(line)
		if decl, ok := parseDeclaration(body); ok && lockfile.NormaliseName(decl.name) == want {
			return true
		}
	}
	return false
}

// Freeze rewrites every declaration of name to pin exactly version, whatever
// its previous specifier was. Lines that do not declare name are untouched.
func Freeze(text, name, version string) string {
	want := lockfile.NormaliseName(name)

	var builder strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		body, ending := splitEnding(line)
		decl, ok := parseDeclaration(body)
		if !ok || lockfile.NormaliseName(decl.name) != want {
			builder.WriteString(line)
			continue
		}
		builder.WriteString(body[:decl.specStart])
		builder.WriteString("==" + version)
		builder.WriteString(body[decl.specEnd:])
		builder.WriteString(ending)
	}
	return builder.String()
}

func splitEnding(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// parseDeclaration locates the package name and specifier of a requirement
// line. Option lines, comments, URLs and editable installs are rejected.
func parseDeclaration(body string) (declaration, bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
		return declaration{}, false
	}

	end := len(body)
	if loc := commentPattern.FindStringIndex(body); loc != nil {
		end = loc[0]
	}
	if loc := optionPattern.FindStringIndex(body[:end]); loc != nil {
		end = loc[0]
	}
	if marker := strings.Index(body[:end], ";"); marker >= 0 {
		end = marker
	}

	match := namePattern.FindStringSubmatchIndex(body[:end])
	if match == nil {
		return declaration{}, false
	}
	name := body[match[2]:match[3]]

	start := match[1]
	for start < end && body[start] == ' ' {
		start++
	}
	stop := end
	for stop > start && (body[stop-1] == ' ' || body[stop-1] == '\t') {
		stop--
	}
	if strings.HasPrefix(body[start:stop], "@") {
		return declaration{}, false
	}

	// cross-check with the PEP 508 parser so that free text is never rewritten
	parsed, err := pypi.ParseDependency(strings.TrimSpace(body[:stop]))
	if err != nil || lockfile.NormaliseName(parsed.Name) != lockfile.NormaliseName(name) {
		return declaration{}, false
	}

	return declaration{name: name, specStart: start, specEnd: stop}, true
}

// specifierSet splits a specifier into its sorted, whitespace-free clauses.
func specifierSet(spec string) []string {
	var clauses []string
	for _, clause := range strings.Split(spec, ",") {
		clause = strings.Join(strings.Fields(clause), "")
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	slices.Sort(clauses)
	return clauses
}

var referencePattern = regexp.MustCompile(`^\s*(?:-r|--requirement|-c|--constraint)(?:\s+|=)(\S+)`)

// ChildRequirementFiles lists the files referenced with -r or -c, in order.
func ChildRequirementFiles(text string) []string {
	var files []string
	for _, line := range strings.Split(text, "\n") {
		if match := referencePattern.FindStringSubmatch(line); match != nil {
			files = append(files, strings.TrimSpace(match[1]))
		}
	}
	return files
}

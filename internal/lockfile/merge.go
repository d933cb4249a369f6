package lockfile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// ErrMissingHashes is returned when the original file is hash-pinned but no
// digests are known for a freshly resolved entry.
var ErrMissingHashes = errors.New("hashes unavailable for hash-pinned entry")

var indexOptions = []string{"--index-url", "--extra-index-url", "-i ", "--trusted-host", "--find-links", "-f "}

// Merge rewrites freshly resolved output so that it follows the conventions
// of the original compiled file. The original header is kept verbatim, entries
// come from the fresh output in its order, annotations and hashes follow the
// original's style, and notes the resolver added that the original did not
// carry are dropped. Merge(x, x) returns x.
func Merge(original, fresh string) (string, error) {
	orig := Parse(original)
	next := Parse(fresh)
	style := orig.Style

	known := make(map[string]Item)
	var editables []Item
	rawSeen := make(map[string]bool)
	for _, item := range orig.Items {
		switch {
		case item.Entry != nil:
			known[NormaliseName(item.Entry.Name)] = item
		case item.Editable:
			editables = append(editables, item)
		default:
			rawSeen[strings.TrimSpace(item.Lines[0])] = true
		}
	}

	lines := slices.Clone(orig.Header.Lines)
	editableIndex := 0
	for _, item := range next.Items {
		switch {
		case item.Entry != nil:
			rendered, err := renderEntry(style, item, known)
			if err != nil {
				return "", err
			}
			lines = append(lines, rendered...)

		case item.Editable:
			if editableIndex < len(editables) {
				lines = append(lines, editables[editableIndex].Lines...)
			} else {
				lines = append(lines, stripAnnotations(style, item.Lines)...)
			}
			editableIndex++

		default:
			trimmed := strings.TrimSpace(item.Lines[0])
			if rawSeen[trimmed] {
				lines = append(lines, item.Lines...)
				continue
			}
			if isResolverNote(trimmed) {
				return join(trimBlankTail(lines, len(orig.Header.Lines)), style), nil
			}
			if isIndexOption(trimmed) {
				continue
			}
			lines = append(lines, stripAnnotations(style, item.Lines)...)
		}
	}

	return join(lines, style), nil
}

func trimBlankTail(lines []string, keep int) []string {
	for len(lines) > keep && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func join(lines []string, style Style) string {
	text := strings.Join(lines, style.Newline)
	if style.TrailingNewline && len(lines) > 0 {
		text += style.Newline
	}
	return text
}

// renderEntry emits the lines for one fresh entry. An entry identical to one in
// the original is copied verbatim; a fresh entry already in the original's
// style is kept as produced; anything else is re-rendered.
func renderEntry(style Style, item Item, known map[string]Item) ([]string, error) {
	entry := *item.Entry
	previous, hasPrevious := known[NormaliseName(entry.Name)]
	sameVersion := hasPrevious && previous.Entry.Version == entry.Version

	if !style.Annotated {
		entry.Via = nil
	} else if !style.ReferencesFiles {
		entry.Via = slices.DeleteFunc(slices.Clone(entry.Via), isFileReference)
	}
	if !style.Hashed {
		entry.Hashes = nil
	} else if len(entry.Hashes) == 0 && sameVersion {
		entry.Hashes = previous.Entry.Hashes
	}

	if sameVersion && sameContent(style, *previous.Entry, entry) {
		return previous.Lines, nil
	}
	if style.Hashed && len(entry.Hashes) == 0 {
		return nil, fmt.Errorf("%w: %s==%s", ErrMissingHashes, entry.Name, entry.Version)
	}
	if compatible(style, item, entry) {
		return item.Lines, nil
	}
	return render(style, entry), nil
}

func sameContent(style Style, previous, next entities.PinnedEntry) bool {
	if previous.Declaration != next.Declaration {
		return false
	}
	if style.Hashed && !slices.Equal(previous.Hashes, next.Hashes) {
		return false
	}
	return !style.Annotated || slices.Equal(previous.Via, next.Via)
}

// compatible reports whether the fresh lines already match the target style.
func compatible(style Style, item Item, entry entities.PinnedEntry) bool {
	freshHashed := len(item.Entry.Hashes) > 0
	if freshHashed != style.Hashed || !slices.Equal(item.Entry.Hashes, entry.Hashes) {
		return false
	}
	if !style.Annotated {
		return item.placement == PlacementNone
	}
	if !slices.Equal(item.Entry.Via, entry.Via) {
		return false
	}

	switch item.placement {
	case PlacementNone:
		return len(entry.Via) == 0
	case PlacementInline:
		if style.Placement != PlacementInline {
			return false
		}
		last := item.Lines[len(item.Lines)-1]
		body, _, column := splitComment(last)
		return column == commentColumn(strings.TrimRight(body, " "), style.ViaColumn)
	case PlacementContinuation:
		return style.Placement == PlacementContinuation ||
			(style.Placement == PlacementMultiline && len(entry.Via) == 1)
	default:
		return style.Placement == PlacementMultiline
	}
}

func render(style Style, entry entities.PinnedEntry) []string {
	var lines []string
	if len(entry.Hashes) == 0 {
		lines = append(lines, entry.Declaration)
	} else {
		lines = append(lines, entry.Declaration+" \\")
		for i, hash := range entry.Hashes {
			line := hashIndent + hashPrefix + hash
			if i < len(entry.Hashes)-1 {
				line += " \\"
			}
			lines = append(lines, line)
		}
	}

	if !style.Annotated || len(entry.Via) == 0 {
		return lines
	}

	switch style.Placement {
	case PlacementInline:
		last := lines[len(lines)-1]
		column := commentColumn(last, style.ViaColumn)
		lines[len(lines)-1] = last + strings.Repeat(" ", column-len(last)) +
			viaPrefix + " " + strings.Join(entry.Via, ", ")
	case PlacementMultiline:
		if len(entry.Via) == 1 {
			lines = append(lines, hashIndent+viaPrefix+" "+entry.Via[0])
			break
		}
		lines = append(lines, hashIndent+viaPrefix)
		for _, via := range entry.Via {
			lines = append(lines, hashIndent+"#   "+via)
		}
	default:
		lines = append(lines, hashIndent+viaPrefix+" "+strings.Join(entry.Via, ", "))
	}
	return lines
}

// commentColumn returns the offset an inline annotation starts at after text.
func commentColumn(text string, viaColumn int) int {
	return max(viaColumn, len(text)+minCommentPadding)
}

// stripAnnotations drops indented "# via" lines from a raw item when the
// original file is not annotated.
func stripAnnotations(style Style, lines []string) []string {
	if style.Annotated || len(lines) == 1 {
		return lines
	}
	kept := []string{lines[0]}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			kept = append(kept, line)
		}
	}
	return kept
}

// isResolverNote matches the warning and unsafe-package notes the resolver
// appends at the end of its output.
func isResolverNote(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "# warning") || strings.Contains(lower, "considered to be unsafe")
}

func isIndexOption(line string) bool {
	for _, option := range indexOptions {
		if strings.HasPrefix(line, option) {
			return true
		}
	}
	return false
}

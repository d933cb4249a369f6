// Package lockfile parses compiled requirement files and merges freshly
// resolved output back into the formatting of an existing file.
package lockfile

import (
	"regexp"
	"slices"
	"strings"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

// Placement is where an entry's "# via" annotation is written.
type Placement int

const (
	// PlacementNone means the entry carries no annotation.
	PlacementNone Placement = iota
	// PlacementInline is "name==1.0   # via a, b" on the entry's last line.
	PlacementInline
	// PlacementContinuation is an indented "# via a, b" line after the entry.
	PlacementContinuation
	// PlacementMultiline is an indented "# via" line followed by one "#   a" line per package.
	PlacementMultiline
)

const (
	hashIndent        = "    "
	hashPrefix        = "--hash="
	viaPrefix         = "# via"
	defaultViaColumn  = 26
	minCommentPadding = 2
)

var (
	entryPattern   = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*===?\s*([^\s;,\\]+)`)
	commentPattern = regexp.MustCompile(`(^|\s)#`)
)

// Item is one logical element of a compiled file: a pinned entry with its
// continuation lines, or a raw line (blank, comment, option, editable).
type Item struct {
	Entry    *entities.PinnedEntry
	Lines    []string
	Editable bool

	placement Placement
	viaColumn int
}

// Style captures the formatting conventions observed in a compiled file.
type Style struct {
	Hashed          bool
	Annotated       bool
	Placement       Placement
	ViaColumn       int // aligned "# via" column; 0 keeps the minimum padding
	ReferencesFiles bool // annotations name "-r"/"-c" source files
	Newline         string
	TrailingNewline bool
}

// Lockfile is a parsed compiled requirements file.
type Lockfile struct {
	Header entities.HeaderBlock
	Items  []Item
	Style  Style
}

// Entries returns the pinned entries in file order.
func (l *Lockfile) Entries() []entities.PinnedEntry {
	var entries []entities.PinnedEntry
	for _, item := range l.Items {
		if item.Entry != nil {
			entries = append(entries, *item.Entry)
		}
	}
	return entries
}

// Parse reads a compiled file. It never fails: lines it does not understand
// are kept as raw items.
func Parse(content string) *Lockfile {
	lock := &Lockfile{}
	lock.Style.Newline = "\n"
	if strings.Contains(content, "\r\n") {
		lock.Style.Newline = "\r\n"
	}
	lock.Style.TrailingNewline = strings.HasSuffix(content, "\n")

	lines := splitLines(content)
	index := 0
	for index < len(lines) && strings.HasPrefix(lines[index], "#") {
		lock.Header.Lines = append(lock.Header.Lines, lines[index])
		index++
	}

	var current *Item
	inMultiVia := false
	continued := false
	for _, line := range lines[index:] {
		trimmed := strings.TrimSpace(line)
		indented := line != "" && (line[0] == ' ' || line[0] == '\t')

		if current != nil && trimmed != "" && (indented || continued) {
			current.Lines = append(current.Lines, line)
			continued = strings.HasSuffix(trimmed, "\\")
			inMultiVia = absorbContinuation(current, line, trimmed, inMultiVia)
			continue
		}

		if current != nil {
			lock.Items = append(lock.Items, *current)
			current = nil
		}
		inMultiVia = false
		continued = false

		item := parseLine(line, trimmed)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lock.Items = append(lock.Items, item)
			continue
		}
		continued = strings.HasSuffix(trimmed, "\\")
		current = &item
	}
	if current != nil {
		lock.Items = append(lock.Items, *current)
	}

	lock.Style.detect(lock.Items)
	return lock
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func parseLine(line, trimmed string) Item {
	item := Item{Lines: []string{line}}
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return item
	}
	if strings.HasPrefix(trimmed, "-e ") || strings.HasPrefix(trimmed, "--editable") {
		item.Editable = true
		return item
	}
	if strings.HasPrefix(trimmed, "-") {
		return item
	}

	body, comment, column := splitComment(line)
	declaration := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), "\\"))
	match := entryPattern.FindStringSubmatch(declaration)
	if match == nil {
		return item
	}

	item.Entry = &entities.PinnedEntry{
		Name:        match[1],
		Version:     match[3],
		Declaration: declaration,
	}
	if via, ok := parseVia(comment); ok {
		item.Entry.Via = via
		item.placement = PlacementInline
		item.viaColumn = column
	}
	return item
}

// absorbContinuation records hashes and annotations found on a continuation
// line of the current item, returning whether a multi-line via list is open.
func absorbContinuation(item *Item, line, trimmed string, inMultiVia bool) bool {
	if item.Entry == nil {
		return inMultiVia
	}

	if strings.HasPrefix(trimmed, hashPrefix) {
		body, comment, column := splitComment(line)
		hash := strings.TrimPrefix(strings.Fields(strings.TrimSpace(body))[0], hashPrefix)
		item.Entry.Hashes = append(item.Entry.Hashes, hash)
		if via, ok := parseVia(comment); ok {
			item.Entry.Via = via
			item.placement = PlacementInline
			item.viaColumn = column
		}
		return false
	}

	if strings.HasPrefix(trimmed, viaPrefix) {
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, viaPrefix))
		if rest == "" {
			item.placement = PlacementMultiline
			item.Entry.Via = []string{}
			return true
		}
		item.placement = PlacementContinuation
		item.Entry.Via = splitVia(rest)
		return false
	}

	if inMultiVia && strings.HasPrefix(trimmed, "#") {
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if name != "" {
			item.Entry.Via = append(item.Entry.Via, name)
		}
		return true
	}

	return inMultiVia
}

// splitComment separates a line into its body and trailing comment. The
// returned column is the byte offset of "#", or -1 when there is no comment.
func splitComment(line string) (string, string, int) {
	loc := commentPattern.FindStringIndex(line)
	if loc == nil {
		return line, "", -1
	}
	column := loc[1] - 1
	return line[:column], line[column:], column
}

func parseVia(comment string) ([]string, bool) {
	if !strings.HasPrefix(comment, viaPrefix) {
		return nil, false
	}
	return splitVia(strings.TrimSpace(strings.TrimPrefix(comment, viaPrefix))), true
}

func splitVia(list string) []string {
	var via []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			via = append(via, part)
		}
	}
	return via
}

func (s *Style) detect(items []Item) {
	inline := false
	for _, item := range items {
		if item.Entry == nil {
			continue
		}
		if len(item.Entry.Hashes) > 0 {
			s.Hashed = true
		}
		if item.placement == PlacementNone {
			continue
		}
		s.Annotated = true
		if slices.ContainsFunc(item.Entry.Via, isFileReference) {
			s.ReferencesFiles = true
		}
		if item.placement > s.Placement {
			s.Placement = item.placement
		}
		if item.placement != PlacementInline {
			continue
		}
		inline = true
		if isPadded(item) && item.viaColumn > s.ViaColumn {
			s.ViaColumn = item.viaColumn
		}
	}
	if s.ViaColumn == 0 && !inline {
		s.ViaColumn = defaultViaColumn
	}
}

// isPadded reports whether an inline annotation was pushed right of its
// declaration by more than the minimum padding, i.e. it sits on an aligned column.
func isPadded(item Item) bool {
	for _, line := range item.Lines {
		if item.viaColumn > minCommentPadding && item.viaColumn < len(line) && line[item.viaColumn] == '#' {
			before := line[:item.viaColumn]
			return len(before)-len(strings.TrimRight(before, " ")) > minCommentPadding
		}
	}
	return false
}

func isFileReference(via string) bool {
	return strings.HasPrefix(via, "-r ") || strings.HasPrefix(via, "-c ")
}

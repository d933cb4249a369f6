package entities

// PinnedEntry is one pinned package in a compiled requirements file.
type PinnedEntry struct {
	Name        string   // as spelled in the file
	Version     string
	Declaration string   // the full "name==version" token including extras and markers
	Via         []string // requiring packages, nil when not annotated
	Hashes      []string // "algorithm:digest", nil when not hash-pinned
}

// HeaderBlock is the leading comment block of a compiled file, kept verbatim.
type HeaderBlock struct {
	Lines []string
}

// Text returns the header lines joined with their line endings.
func (h HeaderBlock) Text(newline string) string {
	text := ""
	for _, line := range h.Lines {
		text += line + newline
	}
	return text
}

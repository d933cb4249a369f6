package entities

import "path"

const defaultDirectory = "/"

// ManagedFile is a dependency file handed to the engine by the caller.
// Values are never mutated; WithContent returns a new file.
type ManagedFile struct {
	Name      string // path relative to Directory, e.g. "requirements/test.in"
	Content   string
	Directory string // project root the name is relative to
}

// NewManagedFile creates a file rooted at the default directory.
func NewManagedFile(name, content string) ManagedFile {
	return ManagedFile{
		Name:      name,
		Content:   content,
		Directory: defaultDirectory,
	}
}

// WithContent returns a copy of the file carrying the given content.
func (f ManagedFile) WithContent(content string) ManagedFile {
	return ManagedFile{
		Name:      f.Name,
		Content:   content,
		Directory: f.Directory,
	}
}

// Path returns the file's location including its directory.
func (f ManagedFile) Path() string {
	dir := f.Directory
	if dir == "" {
		dir = defaultDirectory
	}
	return path.Join(dir, f.Name)
}

// BaseName returns the last element of the file name.
func (f ManagedFile) BaseName() string {
	return path.Base(f.Name)
}

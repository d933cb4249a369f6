package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/lockfile"
)

// Inspect is the interface for the inspect command.
type Inspect interface {
	Execute(ctx context.Context, file entities.ManagedFile) (*InspectReport, error)
}

// InspectReport describes the pins and formatting of a compiled file.
type InspectReport struct {
	File      string
	Header    entities.HeaderBlock
	Entries   []entities.PinnedEntry
	Hashed    bool
	Annotated bool
}

// InspectCommand parses a compiled requirements file.
type InspectCommand struct{}

// NewInspectCommand creates a new InspectCommand.
func NewInspectCommand() *InspectCommand {
	return &InspectCommand{}
}

// Execute returns the pinned entries of the file, failing when it pins nothing.
func (it *InspectCommand) Execute(_ context.Context, file entities.ManagedFile) (*InspectReport, error) {
	lock := lockfile.Parse(file.Content)
	entries := lock.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("no pinned entries found in %q", file.Name)
	}
	return &InspectReport{
		File:      file.Name,
		Header:    lock.Header,
		Entries:   entries,
		Hashed:    lock.Style.Hashed,
		Annotated: lock.Style.Annotated,
	}, nil
}

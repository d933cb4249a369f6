package sanitizer

import (
	"context"
	"path"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const sanitizedSetupCfg = "[metadata]\nname = sanitized-package\n"

// SetupCfgSanitizer replaces setup.cfg with a metadata-only stub, since its
// options may point the build backend at project code.
type SetupCfgSanitizer struct{}

// NewSetupCfgSanitizer creates a setup.cfg sanitizer.
func NewSetupCfgSanitizer(_ entities.SanitizerSettings) *SetupCfgSanitizer {
	return &SetupCfgSanitizer{}
}

// Name returns the sanitizer identifier.
func (it *SetupCfgSanitizer) Name() string { return "setup.cfg" }

// Supports returns true for setup.cfg files.
func (it *SetupCfgSanitizer) Supports(fileName string) bool {
	return path.Base(fileName) == "setup.cfg"
}

// Sanitize returns the metadata-only stub whatever the file content.
func (it *SetupCfgSanitizer) Sanitize(_ context.Context, _ entities.ManagedFile) entities.SanitizedText {
	return entities.SanitizedText{
		Text:  sanitizedSetupCfg,
		Facts: entities.ScriptFacts{PackageName: "sanitized-package"},
	}
}

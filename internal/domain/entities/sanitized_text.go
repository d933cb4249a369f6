package entities

// ScriptFacts are the dependency facts a sanitizer could read from a script.
type ScriptFacts struct {
	PackageName  string
	Requirements []string
}

// SanitizedText is the ephemeral output of a sanitizer. It is only used for
// inspection or for seeding a workspace, never returned to callers.
type SanitizedText struct {
	Text  string
	Facts ScriptFacts
	// Degraded is set (wrapping ErrSanitizationDegraded) when only part of
	// the source could be rewritten.
	Degraded error
}

// IsDegraded reports whether the sanitizer fell back to partial output.
func (s SanitizedText) IsDegraded() bool {
	return s.Degraded != nil
}

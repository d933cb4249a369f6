package resolver

// BuildEnvironment exports buildEnvironment for testing.
var BuildEnvironment = buildEnvironment //nolint:gochecknoglobals // test export

// Redact exports redact for testing.
var Redact = redact //nolint:gochecknoglobals // test export

package commands

// CompiledName exports compiledName for testing.
var CompiledName = compiledName //nolint:gochecknoglobals // test export

// OrderByIncludes exports orderByIncludes for testing.
var OrderByIncludes = orderByIncludes //nolint:gochecknoglobals // test export

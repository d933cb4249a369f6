package entities

// Workspace is an isolated scratch directory owned by a single update run.
type Workspace struct {
	ID   string
	Path string
}

// CompileRequest asks the resolver to recompile one manifest.
type CompileRequest struct {
	ManifestFile   string // relative to the workspace, e.g. "requirements/test.in"
	OutputFile     string // relative to the workspace, e.g. "requirements/test.txt"
	UpgradePackage string // pinned as UpgradePackage==UpgradeVersion when set
	UpgradeVersion string
	GenerateHashes bool
	Credentials    []Credential
}

// CompileResult is what the resolver reported for a successful invocation.
type CompileResult struct {
	Output string // combined stdout and stderr
}

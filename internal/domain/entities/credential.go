package entities

import "fmt"

const (
	CredentialTypeGitSource   = "git_source"
	CredentialTypePythonIndex = "python_index"
)

// Credential is an opaque access record passed through to the resolver
// environment. The engine never inspects or logs secret values.
type Credential struct {
	Type         string `yaml:"type"`
	Host         string `yaml:"host"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Token        string `yaml:"token"`
	IndexURL     string `yaml:"index_url"`
	ReplacesBase bool   `yaml:"replaces_base"`
}

// Secret returns the password, or the token when no password is set.
func (c Credential) Secret() string {
	if c.Password != "" {
		return c.Password
	}
	return c.Token
}

// String keeps secrets out of log lines and error messages.
func (c Credential) String() string {
	target := c.Host
	if target == "" {
		target = c.IndexURL
	}
	return fmt.Sprintf("%s credential for %s (redacted)", c.Type, target)
}

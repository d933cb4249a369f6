package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	defaultWorkspacePrefix    = "lockbump"
	defaultResolverCommand    = "pip-compile"
	defaultResolverTimeout    = 10 * time.Minute
	defaultReplacementVersion = "0.0.1"
)

// Settings is the top-level configuration for lockbump.
type Settings struct {
	Workspace   WorkspaceSettings `yaml:"workspace"`
	Resolver    ResolverSettings  `yaml:"resolver"`
	Sanitizer   SanitizerSettings `yaml:"sanitizer"`
	Files       FileSettings      `yaml:"files"`
	Credentials []Credential      `yaml:"credentials"`
}

// WorkspaceSettings controls where scratch workspaces are created.
type WorkspaceSettings struct {
	Root   string `yaml:"root"`   // empty means the system temp directory
	Prefix string `yaml:"prefix"` // directory name prefix
}

// ResolverSettings controls the external lock resolver subprocess.
type ResolverSettings struct {
	Command     []string      `yaml:"command"`
	Timeout     time.Duration `yaml:"timeout"`
	Reannotate  *bool         `yaml:"reannotate"`
	AllowUnsafe bool          `yaml:"allow_unsafe"`
}

// ShouldReannotate reports whether the annotation-reset pass runs (default true).
func (r ResolverSettings) ShouldReannotate() bool {
	return r.Reannotate == nil || *r.Reannotate
}

// SanitizerSettings controls build-script rewriting.
type SanitizerSettings struct {
	ReplacementVersion string `yaml:"replacement_version"`
}

// FileSettings holds the glob patterns used to classify files.
type FileSettings struct {
	Manifests  []string `yaml:"manifests"`
	Supporting []string `yaml:"supporting"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the configuration used when no file is found.
func DefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// NewSettings reads and parses a configuration file, expanding environment
// variables in credentials and resolving secret file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}
	settings.applyDefaults()

	for i := range settings.Credentials {
		settings.Credentials[i].Username = resolveToken(settings.Credentials[i].Username)
		settings.Credentials[i].Password = resolveToken(settings.Credentials[i].Password)
		settings.Credentials[i].Token = resolveToken(settings.Credentials[i].Token)
	}

	if validateErr := validate(&settings); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// LoadSettings loads the given file, the first file found in the standard
// locations, or the defaults when neither exists.
func LoadSettings(path string) (*Settings, error) {
	if path != "" {
		return NewSettings(path)
	}

	found, err := FindConfigFile()
	if err != nil {
		logger.Debugf("No config file found, using defaults: %v", err)
		return DefaultSettings(), nil
	}

	logger.Debugf("Using config file %q", found)
	return NewSettings(found)
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".lockbump.yaml",
		".lockbump.yml",
		"lockbump.yaml",
		"lockbump.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

func (s *Settings) applyDefaults() {
	if s.Workspace.Prefix == "" {
		s.Workspace.Prefix = defaultWorkspacePrefix
	}
	if len(s.Resolver.Command) == 0 {
		s.Resolver.Command = []string{defaultResolverCommand}
	}
	if s.Resolver.Timeout == 0 {
		s.Resolver.Timeout = defaultResolverTimeout
	}
	if s.Sanitizer.ReplacementVersion == "" {
		s.Sanitizer.ReplacementVersion = defaultReplacementVersion
	}
	if len(s.Files.Manifests) == 0 {
		s.Files.Manifests = []string{"*.in", "**/*.in"}
	}
	if len(s.Files.Supporting) == 0 {
		s.Files.Supporting = []string{
			"setup.py", "**/setup.py",
			"setup.cfg", "**/setup.cfg",
			"*.gemspec", "**/*.gemspec",
		}
	}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Debugf("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate reports every invalid value at once.
func validate(settings *Settings) error {
	var err error

	if settings.Resolver.Timeout < 0 {
		err = multierr.Append(err, errors.New("resolver.timeout must not be negative"))
	}
	if strings.ContainsAny(settings.Workspace.Prefix, `/\`) {
		err = multierr.Append(err, fmt.Errorf("workspace.prefix %q must not contain path separators",
			settings.Workspace.Prefix))
	}

	for i, cred := range settings.Credentials {
		switch cred.Type {
		case CredentialTypeGitSource:
			if cred.Host == "" {
				err = multierr.Append(err, fmt.Errorf("credentials[%d].host is required", i))
			}
		case CredentialTypePythonIndex:
			if cred.IndexURL == "" {
				err = multierr.Append(err, fmt.Errorf("credentials[%d].index_url is required", i))
			}
		case "":
			err = multierr.Append(err, fmt.Errorf("credentials[%d].type is required", i))
		default:
			err = multierr.Append(err, fmt.Errorf("credentials[%d].type %q is not supported", i, cred.Type))
		}
	}

	return err
}

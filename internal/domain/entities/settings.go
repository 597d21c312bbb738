package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBranchPrefix         = "pbot"
	DefaultRemoteName           = "origin"
	DefaultConcurrency          = 4
	DefaultIgnoreConditionsPath = "ignore-conditions"
	DefaultCommitName           = "pbot"
	DefaultCommitEmail          = "pbot@users.noreply.github.com"

	SourceTypeNuGet     = "nuget"
	SourceTypeTerraform = "terraform"

	DefaultNuGetURL     = "https://api.nuget.org/v3/index.json"
	DefaultTerraformURL = "https://registry.terraform.io"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Settings is the complete configuration for one update run.
type Settings struct {
	Repository       RepositorySettings `yaml:"repository"`
	Provider         ProviderConfig     `yaml:"provider"`
	Sources          []SourceConfig     `yaml:"sources"`
	IgnoreConditions string             `yaml:"ignore_conditions"`
	BranchPrefix     string             `yaml:"branch_prefix"`
	MaxGroups        int                `yaml:"max_groups"`
	Concurrency      int                `yaml:"concurrency"`
	Commit           CommitSettings     `yaml:"commit"`
	Exclusions       map[string]string  `yaml:"exclusions"`
	Groups           []GroupFamily      `yaml:"groups"`
	DryRun           bool               `yaml:"dry_run"`
}

// RepositorySettings locates the working tree and its hosting coordinates.
// Owner and Name are derived from the remote URL when empty.
type RepositorySettings struct {
	Path       string `yaml:"path"`
	Owner      string `yaml:"owner"`
	Name       string `yaml:"name"`
	BaseBranch string `yaml:"base_branch"`
	Remote     string `yaml:"remote"`
}

// ProviderConfig selects the change-request host.
type ProviderConfig struct {
	Type    string `yaml:"type"`  // "github", "gitlab", "azuredevops"
	Token   string `yaml:"token"` // Inline, ${ENV_VAR}, or file path
	BaseURL string `yaml:"base_url"`
}

// SourceConfig is one metadata source feed.
type SourceConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // "nuget", "terraform"
	URL  string `yaml:"url"`
}

// CommitSettings is the signature used for generated commits.
type CommitSettings struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// DefaultSettings returns the configuration used when no file is present.
func DefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// NewSettings loads, resolves and validates the configuration file at path.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Provider.Token = ResolveToken(settings.Provider.Token)
	settings.applyDefaults()

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// FindConfigFile searches the default locations for a configuration file.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{".pbot.yaml", ".pbot.yml", "pbot.yaml", "pbot.yml"}

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

// ResolveToken expands ${ENV_VAR} references and reads the token from a file
// when the result names an existing path.
func ResolveToken(raw string) string {
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
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// Grouping returns the built-in families followed by the configured ones.
func (s *Settings) Grouping() Grouping {
	return NewGrouping(append(DefaultGroupFamilies(), s.Groups...))
}

// ExclusionPolicy returns the built-in block list extended by the configured one.
func (s *Settings) ExclusionPolicy() ExclusionPolicy {
	return NewExclusionPolicy(s.Exclusions)
}

func (s *Settings) applyDefaults() {
	if s.Repository.Path == "" {
		s.Repository.Path = "."
	}
	if s.Repository.Remote == "" {
		s.Repository.Remote = DefaultRemoteName
	}
	if s.BranchPrefix == "" {
		s.BranchPrefix = DefaultBranchPrefix
	}
	if s.Concurrency == 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.IgnoreConditions == "" {
		s.IgnoreConditions = DefaultIgnoreConditionsPath
	}
	if s.Commit.Name == "" {
		s.Commit.Name = DefaultCommitName
	}
	if s.Commit.Email == "" {
		s.Commit.Email = DefaultCommitEmail
	}
	for i := range s.Sources {
		if s.Sources[i].URL == "" {
			s.Sources[i].URL = defaultSourceURL(s.Sources[i].Type)
		}
		if s.Sources[i].Name == "" {
			s.Sources[i].Name = s.Sources[i].URL
		}
	}
}

func (s *Settings) validate() error {
	if strings.ContainsAny(s.BranchPrefix, " ~^:?*[\\") {
		return fmt.Errorf("branch_prefix %q is not a valid ref component", s.BranchPrefix)
	}
	if s.MaxGroups < 0 {
		return errors.New("max_groups must not be negative")
	}
	if s.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}

	for i, src := range s.Sources {
		if src.Type == "" {
			return fmt.Errorf("sources[%d].type is required", i)
		}
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url is required for type %q", i, src.Type)
		}
	}

	for i, g := range s.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d].name is required", i)
		}
		if len(g.Members) == 0 && len(g.Prefixes) == 0 {
			return fmt.Errorf("groups[%d] must list at least one member or prefix", i)
		}
	}

	return nil
}

func defaultSourceURL(sourceType string) string {
	switch sourceType {
	case SourceTypeNuGet:
		return DefaultNuGetURL
	case SourceTypeTerraform:
		return DefaultTerraformURL
	default:
		return ""
	}
}

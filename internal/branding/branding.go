// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults cover a missing or empty file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GitHubOwner string `yaml:"github_owner"`
	ProjectName string `yaml:"project_name"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:     "puzzle",
			DisplayName: "Puzzle",
			Description: "Project scaffolding for the Puzzle Framework",
			HomeDir:     ".puzzle",
			EnvPrefix:   "PUZZLE",
			GitHubOwner: "spark-development",
			ProjectName: "puzzle-framework",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "puzzle").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".puzzle").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PUZZLE").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubOwner returns the GitHub organization hosting the sample projects.
func GitHubOwner() string { load(); return defaults.GitHubOwner }

// ProjectName returns the framework name used to derive sample repository
// names ("<project>-sample", "<project>-lite-sample").
func ProjectName() string { load(); return defaults.ProjectName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("DEBUG") → "PUZZLE_DEBUG".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}

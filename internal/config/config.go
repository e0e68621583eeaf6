package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spark-development/puzzle-cli/internal/branding"
	"github.com/spark-development/puzzle-cli/internal/release"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
	envFile  = ".env"
)

// Recognized configuration keys.
const (
	KeyAPIBase     = "api_base"
	KeyOwner       = "owner"
	KeyGitHubToken = "github_token"
	KeyStagingDir  = "staging_dir"
	KeyAuthorName  = "author_name"
	KeyAuthorEmail = "author_email"
	KeyDebug       = "debug"
	KeyLogLevel    = "log_level"
	KeyProject     = "project"
)

// tokenFallbackEnv is read when no PUZZLE_GITHUB_TOKEN is set.
const tokenFallbackEnv = "GITHUB_TOKEN"

// ErrUnknownKey is returned by Set for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

var knownKeys = []string{
	KeyAPIBase,
	KeyAuthorEmail,
	KeyAuthorName,
	KeyDebug,
	KeyGitHubToken,
	KeyLogLevel,
	KeyOwner,
	KeyProject,
	KeyStagingDir,
}

// Keys returns the recognized configuration keys in sorted order.
func Keys() []string {
	return slices.Clone(knownKeys)
}

// ValidKey reports whether key is a recognized configuration key.
func ValidKey(key string) bool {
	_, found := slices.BinarySearch(knownKeys, key)
	return found
}

// DefaultStagingDir is the scratch root used when staging_dir is unset.
func DefaultStagingDir() string {
	return filepath.Join(os.TempDir(), "pfcli")
}

// Dir returns the path to the Puzzle config directory (~/.puzzle/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Settings is the typed view of the configuration consumed by commands.
type Settings struct {
	APIBase     string
	Owner       string
	GitHubToken string
	StagingDir  string
	AuthorName  string
	AuthorEmail string
	Debug       bool
	LogLevel    string
	Project     string
}

// Store reads and writes one config directory.
type Store struct {
	v   *viper.Viper
	dir string
}

// Load opens the store rooted at Dir().
func Load() *Store {
	return Open(Dir())
}

// Open initializes a store that reads dir/config.yaml, dir/.env and the
// environment. Missing files are not an error.
func Open(dir string) *Store {
	// godotenv never overrides variables already set in the process.
	if _, err := os.Stat(filepath.Join(dir, envFile)); err == nil {
		_ = godotenv.Load(filepath.Join(dir, envFile))
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, fileName+"."+fileType))
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()
	_ = v.BindEnv(KeyGitHubToken, branding.EnvVar(KeyGitHubToken), tokenFallbackEnv)

	v.SetDefault(KeyAPIBase, release.DefaultAPIBase)
	v.SetDefault(KeyOwner, branding.GitHubOwner())
	v.SetDefault(KeyProject, branding.ProjectName())
	v.SetDefault(KeyStagingDir, DefaultStagingDir())
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogLevel, "warn")

	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()

	return &Store{v: v, dir: dir}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// FilePath returns the config file the store writes to.
func (s *Store) FilePath() string {
	return filepath.Join(s.dir, fileName+"."+fileType)
}

// Get returns a config value by key. Returns empty string if not set.
func (s *Store) Get(key string) string {
	return s.v.GetString(key)
}

// All returns every recognized key with its effective value.
func (s *Store) All() map[string]string {
	out := make(map[string]string, len(knownKeys))
	for _, k := range knownKeys {
		out[k] = s.v.GetString(k)
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set writes a config key-value pair and saves the config file.
func (s *Store) Set(key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	if err := ensureDir(s.dir); err != nil {
		return err
	}

	configFile := s.FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	// Only keys present in the file are written back, never defaults or
	// values picked up from the environment.
	file := viper.New()
	file.SetConfigFile(configFile)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	file.Set(key, value)

	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	s.v.Set(key, value)
	return nil
}

// Settings resolves the typed settings. The GitHub token falls back to the
// conventional GITHUB_TOKEN variable.
func (s *Store) Settings() Settings {
	return Settings{
		APIBase:     s.v.GetString(KeyAPIBase),
		Owner:       s.v.GetString(KeyOwner),
		GitHubToken: s.v.GetString(KeyGitHubToken),
		StagingDir:  s.v.GetString(KeyStagingDir),
		AuthorName:  s.v.GetString(KeyAuthorName),
		AuthorEmail: s.v.GetString(KeyAuthorEmail),
		Debug:       s.v.GetBool(KeyDebug),
		LogLevel:    s.v.GetString(KeyLogLevel),
		Project:     s.v.GetString(KeyProject),
	}
}

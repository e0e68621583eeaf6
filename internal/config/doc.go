// Package config manages user-level settings stored at ~/.puzzle/config.yaml.
// Values may be overridden with PUZZLE_* environment variables, which are
// also read from ~/.puzzle/.env when present.
package config

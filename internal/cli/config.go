package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spark-development/puzzle-cli/internal/branding"
	"github.com/spark-development/puzzle-cli/internal/command"
	"github.com/spark-development/puzzle-cli/internal/config"
	"github.com/spark-development/puzzle-cli/internal/ui"
)

// configCommand reads and writes ~/.puzzle/config.yaml:
//
//	puzzle config             list every key
//	puzzle config <key>       print one value
//	puzzle config <key> <v>   store a value
type configCommand struct {
	options *command.OptionRegistry
	store   func() *config.Store
}

func newConfigCommand() *configCommand {
	return &configCommand{
		options: command.NewOptionRegistry(),
		store:   config.Load,
	}
}

func (c *configCommand) Name() string { return "config" }

func (c *configCommand) Description() string {
	return "Read and write settings (" + strings.Join(config.Keys(), ", ") + ")"
}

func (c *configCommand) Options() *command.OptionRegistry { return c.options }

func (c *configCommand) Run(_ context.Context, inv command.Invocation) error {
	store := c.store()

	switch len(inv.Args) {
	case 0:
		all := store.All()
		for _, k := range config.SortedKeys(all) {
			fmt.Fprintf(inv.Out, "%s = %s\n", k, redact(k, all[k]))
		}
		return nil

	case 1:
		key := inv.Args[0]
		if !config.ValidKey(key) {
			return fmt.Errorf("%w %q", config.ErrUnknownKey, key)
		}
		fmt.Fprintln(inv.Out, store.Get(key))
		return nil

	case 2:
		key, value := inv.Args[0], inv.Args[1]
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		ui.New(inv.Out, inv.Err, inv.NoColor).OK("Set %s = %s", key, redact(key, value))
		return nil

	default:
		return fmt.Errorf("usage: %s config [<key> [<value>]]", branding.CLIName())
	}
}

func redact(key, value string) string {
	if key != config.KeyGitHubToken || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", len(value)-4)
}

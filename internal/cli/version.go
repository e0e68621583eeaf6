package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spark-development/puzzle-cli/internal/branding"
	"github.com/spark-development/puzzle-cli/internal/command"
)

type versionCommand struct {
	options *command.OptionRegistry
	info    BuildInfo
}

func newVersionCommand(info BuildInfo) *versionCommand {
	opts := command.NewOptionRegistry()
	opts.Add("short", "Print version number only", command.TypeBool, "s", false)
	opts.Add("json", "Print version info as JSON", command.TypeBool, "j", false)
	return &versionCommand{options: opts, info: info}
}

func (c *versionCommand) Name() string                     { return "version" }
func (c *versionCommand) Description() string              { return "Print version information" }
func (c *versionCommand) Options() *command.OptionRegistry { return c.options }

func (c *versionCommand) Run(_ context.Context, inv command.Invocation) error {
	if inv.Options.Bool("short") {
		fmt.Fprintln(inv.Out, c.info.Version)
		return nil
	}

	if inv.Options.Bool("json") {
		info := map[string]string{
			"version": c.info.Version,
			"commit":  c.info.Commit,
			"date":    c.info.Date,
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		fmt.Fprintln(inv.Out, string(out))
		return nil
	}

	fmt.Fprintf(inv.Out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), c.info.Version, c.info.Commit, c.info.Date)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spark-development/puzzle-cli/internal/branding"
	"github.com/spark-development/puzzle-cli/internal/command"
	"github.com/spark-development/puzzle-cli/internal/config"
	"github.com/spark-development/puzzle-cli/internal/logging"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrUsage is returned when no known command was selected or help was
// requested. The process exits with UsageExitCode.
var ErrUsage = errors.New("usage requested")

// UsageExitCode is the exit status for ErrUsage.
const UsageExitCode = 255

const (
	flagDebug   = "debug"
	flagNoColor = "no-color"
)

// BuildInfo is injected via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Dispatcher routes argv to one of the registered commands.
type Dispatcher struct {
	Registry *command.Registry
	Out      io.Writer
	Err      io.Writer
}

func (d *Dispatcher) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d *Dispatcher) err() io.Writer {
	if d.Err == nil {
		return os.Stderr
	}
	return d.Err
}

// Dispatch runs the command selected by the first positional argument of
// argv (argv excludes the program name).
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) error {
	name := firstPositional(argv)
	cmd, ok := d.Registry.Resolve(name)
	if name == "" || name == "help" || !ok {
		d.Usage(d.err())
		return ErrUsage
	}

	defer func(l zerolog.Logger) { logging.Logger = l }(logging.Logger)

	var ran bool
	root := d.newRoot()
	root.AddCommand(d.newSubcommand(cmd, &ran))
	root.SetArgs(argv)

	executed, err := root.ExecuteContextC(ctx)
	if err != nil {
		if ran {
			return err
		}
		fmt.Fprintf(d.err(), "Error: %v\n\n", err)
		fmt.Fprint(d.err(), executed.UsageString())
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if help, _ := executed.Flags().GetBool("help"); help {
		return ErrUsage
	}
	return nil
}

func (d *Dispatcher) newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           branding.CLIName(),
		Short:         branding.Description(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			settings := config.Load().Settings()
			cfg := logging.DefaultConfig()
			cfg.Level = logging.ParseLevel(settings.LogLevel)
			if debug, _ := cmd.Flags().GetBool(flagDebug); debug || settings.Debug {
				cfg.Level = logging.DebugLevel
			}
			cfg.Output = cmd.ErrOrStderr()
			logging.Init(cfg)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().Bool(flagDebug, false, "Print debug information")
	root.PersistentFlags().Bool(flagNoColor, false, "Disable colored output")
	root.SetOut(d.out())
	root.SetErr(d.err())
	return root
}

// newSubcommand builds the cobra command for c. ran is set once parsing
// succeeded and c is about to run.
func (d *Dispatcher) newSubcommand(c command.Command, ran *bool) *cobra.Command {
	specs := c.Options().Specs()

	sub := &cobra.Command{
		Use:   c.Name(),
		Short: c.Description(),
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*ran = true

			values := command.Defaults(c.Options())
			for _, spec := range specs {
				if cmd.Flags().Changed(spec.Name) {
					values[spec.Name] = flagValue(cmd.Flags(), spec)
				}
			}
			noColor, _ := cmd.Flags().GetBool(flagNoColor)

			inv := command.Invocation{
				Args:    args,
				Options: values,
				Out:     cmd.OutOrStdout(),
				Err:     cmd.ErrOrStderr(),
				NoColor: noColor,
			}
			return c.Run(cmd.Context(), inv)
		},
	}
	for _, spec := range specs {
		bindOption(sub.Flags(), spec)
	}
	return sub
}

// bindOption registers spec on fs as a flag of the spec's kind.
func bindOption(fs *pflag.FlagSet, spec command.OptionSpec) {
	switch spec.Type.Kind() {
	case command.KindBool:
		fs.BoolP(spec.Name, spec.Short, cast.ToBool(spec.Default), spec.Description)
	case command.KindInt:
		fs.IntP(spec.Name, spec.Short, cast.ToInt(spec.Default), spec.Description)
	case command.KindFloat:
		fs.Float64P(spec.Name, spec.Short, cast.ToFloat64(spec.Default), spec.Description)
	default:
		fs.StringP(spec.Name, spec.Short, cast.ToString(spec.Default), spec.Description)
	}
}

func flagValue(fs *pflag.FlagSet, spec command.OptionSpec) any {
	switch spec.Type.Kind() {
	case command.KindBool:
		v, _ := fs.GetBool(spec.Name)
		return v
	case command.KindInt:
		v, _ := fs.GetInt(spec.Name)
		return v
	case command.KindFloat:
		v, _ := fs.GetFloat64(spec.Name)
		return v
	default:
		v, _ := fs.GetString(spec.Name)
		return v
	}
}

// firstPositional returns the first token that is not a flag.
func firstPositional(argv []string) string {
	for _, a := range argv {
		if a == "--" {
			return ""
		}
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// Usage renders the command listing.
func (d *Dispatcher) Usage(w io.Writer) {
	fmt.Fprintf(w, "%s - %s\n\n", branding.DisplayName(), branding.Description())
	fmt.Fprintf(w, "Usage:\n  %s <command> [options] [args]\n\n", branding.CLIName())
	fmt.Fprintln(w, "Commands:")

	desc := d.Registry.Descriptions()
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, name := range slices.Sorted(maps.Keys(desc)) {
		fmt.Fprintf(tw, "  %s\t%s\n", name, desc[name])
	}
	tw.Flush()

	fmt.Fprintln(w, "\nGlobal options:")
	tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  --%s\t%s\n", flagDebug, "Print debug information")
	fmt.Fprintf(tw, "  --%s\t%s\n", flagNoColor, "Disable colored output")
	fmt.Fprintf(tw, "  -h, --help\t%s\n", "Show help for a command")
	tw.Flush()
}

// ExitCode maps a Dispatch error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return UsageExitCode
	default:
		return 1
	}
}

// NewRegistry returns the registry of all puzzle commands.
func NewRegistry(info BuildInfo) *command.Registry {
	return command.NewRegistry(
		newProjectCommand(),
		newConfigCommand(),
		newVersionCommand(info),
	)
}

// Execute runs the CLI with build info injected via ldflags.
func Execute(version, commit, date string) error {
	d := &Dispatcher{
		Registry: NewRegistry(BuildInfo{Version: version, Commit: commit, Date: date}),
	}
	return d.Dispatch(context.Background(), os.Args[1:])
}

package command

import (
	"context"
	"io"

	"github.com/spf13/cast"
)

// Command is implemented by every CLI command.
type Command interface {
	// Name is the word that selects the command on the command line.
	Name() string
	// Description is shown in the help listing.
	Description() string
	// Options returns the command's option table. It must return the same
	// registry on every call.
	Options() *OptionRegistry
	// Run executes the command with the parsed invocation.
	Run(ctx context.Context, inv Invocation) error
}

// Invocation is what the parser hands to a command.
type Invocation struct {
	Args    []string
	Options Values

	Out     io.Writer
	Err     io.Writer
	NoColor bool
}

// Arg returns the i-th positional argument or "".
func (inv Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Values holds parsed option values keyed by option name.
type Values map[string]any

// Has reports whether name has a value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Bool returns the value of name as a bool.
func (v Values) Bool(name string) bool { return cast.ToBool(v[name]) }

// String returns the value of name as a string.
func (v Values) String(name string) string { return cast.ToString(v[name]) }

// Int returns the value of name as an int.
func (v Values) Int(name string) int { return cast.ToInt(v[name]) }

// Float returns the value of name as a float64.
func (v Values) Float(name string) float64 { return cast.ToFloat64(v[name]) }

// Defaults returns the declared defaults of r as Values.
func Defaults(r *OptionRegistry) Values {
	vals := make(Values, r.Len())
	for _, s := range r.Specs() {
		if s.HasDefault() {
			vals[s.Name] = s.Default
		}
	}
	return vals
}

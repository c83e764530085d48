package command

import (
	"context"
	"encoding/json"

	"github.com/spf13/pflag"

	"github.com/msto63/sparo/internal/telemetry"
)

// Output is the line-oriented sink handed to every handler
type Output interface {
	WriteLine(line string)
	WriteVerboseLine(line string)
	WriteErrorLine(line string)
}

// Collector receives a telemetry record after each successful invocation.
// It must not block.
type Collector interface {
	CollectTelemetry(record telemetry.Record)
}

// InternalErrorReporter is implemented by the Dispatcher. Collaborators
// that hit a non-fatal internal fault call SetHasInternalError so the
// current invocation is not recorded as telemetry.
type InternalErrorReporter interface {
	SetHasInternalError()
}

// Schema lets a command declare its flags
type Schema interface {
	// Flags returns the flag set of the command
	Flags() *pflag.FlagSet

	// DisableVersion turns off the engine's version reporting for the command
	DisableVersion()
}

// Engine is the argument-parsing engine commands are registered with
type Engine interface {
	// Command registers pattern. build is called once to construct the
	// flag schema, run is called when the command matches.
	Command(pattern, description string, build func(Schema), run func(ctx context.Context, args Args))

	// Execute parses argv and runs the matching command
	Execute(ctx context.Context, argv []string) error
}

// Handler executes a command
type Handler func(ctx context.Context, args Args, out Output) error

// Descriptor describes a command. It is immutable once registered.
type Descriptor struct {
	// Pattern is the invocation pattern, e.g. "checkout <profile> [branch]"
	Pattern string

	// Description is the one-line help text
	Description string

	// Options declares the command's flags (optional)
	Options func(schema Schema)

	// Handler runs the command
	Handler Handler
}

// Args are the parsed arguments of one invocation
type Args struct {
	// Positional holds the positional arguments in order
	Positional []string

	// Named maps placeholder names from the pattern to their values
	Named map[string]string

	// Flags is the parsed flag set, nil when the command has no flags
	Flags *pflag.FlagSet
}

// Get returns the value bound to the placeholder name, or ""
func (a Args) Get(name string) string {
	return a.Named[name]
}

// Map flattens the arguments: positionals under "_", then placeholders
// and flags by name
func (a Args) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(a.Named)+1)

	positional := a.Positional
	if positional == nil {
		positional = []string{}
	}
	m["_"] = positional

	if a.Flags != nil {
		a.Flags.VisitAll(func(f *pflag.Flag) {
			if f.Name == "help" {
				return
			}
			m[f.Name] = f.Value.String()
		})
	}
	for k, v := range a.Named {
		m[k] = v
	}

	return m
}

// String renders the arguments as JSON
func (a Args) String() string {
	data, err := json.Marshal(a.Map())
	if err != nil {
		return "{}"
	}
	return string(data)
}

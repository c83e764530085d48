package argv

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/msto63/sparo/internal/command"
)

// Persistent flags defined on the root command
const (
	FlagVerbose = "verbose"
	FlagDebug   = "debug"
)

// Option configures an Engine
type Option func(*Engine)

// WithOutput sets the writers cobra prints help and usage to
func WithOutput(out, err io.Writer) Option {
	return func(e *Engine) {
		if out != nil {
			e.root.SetOut(out)
		}
		if err != nil {
			e.root.SetErr(err)
		}
	}
}

// Engine is a command.Engine backed by cobra
type Engine struct {
	root  *cobra.Command
	hooks []func(flags *pflag.FlagSet)
}

// New creates an Engine whose root command reports version on --version
func New(name, description, version string, opts ...Option) *Engine {
	root := &cobra.Command{
		Use:                name,
		Short:              description,
		Version:            version,
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableSuggestions: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolP(FlagVerbose, "v", false, "Verbose output")
	root.PersistentFlags().Bool(FlagDebug, false, "Debug output (implies --verbose)")

	e := &Engine{root: root}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		for _, hook := range e.hooks {
			hook(cmd.Flags())
		}
		return nil
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Root returns the cobra root command
func (e *Engine) Root() *cobra.Command {
	return e.root
}

// OnFlags registers a hook that runs after flags are parsed and before
// the matched command runs
func (e *Engine) OnFlags(hook func(flags *pflag.FlagSet)) {
	e.hooks = append(e.hooks, hook)
}

// Command registers a subcommand. It panics when pattern is malformed.
// Registering a name again replaces the earlier command.
func (e *Engine) Command(pattern, description string, build func(command.Schema), run func(ctx context.Context, args command.Args)) {
	p, err := ParsePattern(pattern)
	if err != nil {
		panic(fmt.Sprintf("argv: %v", err))
	}

	for _, existing := range e.root.Commands() {
		if existing.Name() == p.Name {
			e.root.RemoveCommand(existing)
		}
	}

	cmd := &cobra.Command{
		Use:   pattern,
		Short: description,
		Args:  p.Validate,
		RunE: func(cmd *cobra.Command, args []string) error {
			run(cmd.Context(), command.Args{
				Positional: args,
				Named:      p.Bind(args),
				Flags:      cmd.Flags(),
			})
			return nil
		},
	}
	if build != nil {
		build(&schema{cmd: cmd})
	}

	e.root.AddCommand(cmd)
}

// Execute parses argv and runs the matching command. Parse errors and
// unknown commands are returned; a bare invocation prints help.
func (e *Engine) Execute(ctx context.Context, argv []string) error {
	// cobra falls back to os.Args for nil
	args := make([]string, len(argv))
	copy(args, argv)
	e.root.SetArgs(args)

	return e.root.ExecuteContext(ctx)
}

// ApplyFlags returns a hook that applies --verbose and --debug to t
func ApplyFlags(t interface {
	SetVerbose(bool)
	SetDebug(bool)
}) func(*pflag.FlagSet) {
	return func(flags *pflag.FlagSet) {
		if v, err := flags.GetBool(FlagVerbose); err == nil && v {
			t.SetVerbose(true)
		}
		if d, err := flags.GetBool(FlagDebug); err == nil && d {
			t.SetDebug(true)
		}
	}
}

// schema adapts a cobra command to command.Schema
type schema struct {
	cmd *cobra.Command
}

func (s *schema) Flags() *pflag.FlagSet {
	return s.cmd.Flags()
}

func (s *schema) DisableVersion() {
	s.cmd.Version = ""
}

var _ command.Engine = (*Engine)(nil)

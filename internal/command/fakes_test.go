package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/pflag"

	"github.com/msto63/sparo/internal/telemetry"
)

// fakeSchema records what a builder declared
type fakeSchema struct {
	flags           *pflag.FlagSet
	versionDisabled bool
}

func (s *fakeSchema) Flags() *pflag.FlagSet { return s.flags }
func (s *fakeSchema) DisableVersion()       { s.versionDisabled = true }

type fakeCommand struct {
	pattern     string
	description string
	schema      *fakeSchema
	run         func(ctx context.Context, args Args)
}

// fakeEngine matches argv[0] against the canonical names of its commands
type fakeEngine struct {
	commands []*fakeCommand
}

func (e *fakeEngine) Command(pattern, description string, build func(Schema), run func(ctx context.Context, args Args)) {
	schema := &fakeSchema{flags: pflag.NewFlagSet(pattern, pflag.ContinueOnError)}
	build(schema)
	e.commands = append(e.commands, &fakeCommand{
		pattern:     pattern,
		description: description,
		schema:      schema,
		run:         run,
	})
}

func (e *fakeEngine) Execute(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	// later registrations win, like the registry
	for i := len(e.commands) - 1; i >= 0; i-- {
		cmd := e.commands[i]
		if CommandName(cmd.pattern) != argv[0] {
			continue
		}
		if err := cmd.schema.flags.Parse(argv[1:]); err != nil {
			return err
		}
		cmd.run(ctx, Args{Positional: cmd.schema.flags.Args(), Flags: cmd.schema.flags})
		return nil
	}
	return fmt.Errorf("unknown command %q", argv[0])
}

// fakeOutput records lines by kind
type fakeOutput struct {
	mu      sync.Mutex
	lines   []string
	verbose []string
	errors  []string
}

func (o *fakeOutput) WriteLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, line)
}

func (o *fakeOutput) WriteVerboseLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verbose = append(o.verbose, line)
}

func (o *fakeOutput) WriteErrorLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors = append(o.errors, line)
}

// fakeCollector records submitted telemetry
type fakeCollector struct {
	mu      sync.Mutex
	records []telemetry.Record
	panics  bool
}

func (c *fakeCollector) CollectTelemetry(r telemetry.Record) {
	if c.panics {
		panic("collector exploded")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

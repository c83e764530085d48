package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/msto63/sparo/internal/stopwatch"
	"github.com/msto63/sparo/internal/telemetry"
	"github.com/msto63/sparo/pkg/core/logging"
)

// Exit codes produced by the dispatcher
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ErrSilent fails an invocation without printing a diagnostic. Any error
// whose message is empty behaves the same way.
var ErrSilent = errors.New("")

// InvocationResult is the outcome of one Run
type InvocationResult struct {
	ExitCode int
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the diagnostic logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock sets the clock used to time handlers
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// Dispatcher registers commands with an Engine and runs them.
//
// A Dispatcher drives one top-level invocation at a time; the
// internal-error flag and the result are per-invocation state.
type Dispatcher struct {
	engine    Engine
	output    Output
	telemetry Collector
	logger    logrus.FieldLogger
	clock     stopwatch.Clock

	infos            *Infos
	hasInternalError atomic.Bool

	argv   []string
	result InvocationResult
}

// New creates a Dispatcher. A nil collector disables telemetry.
func New(engine Engine, output Output, collector Collector, opts ...Option) *Dispatcher {
	if collector == nil {
		collector = telemetry.Nop{}
	}

	d := &Dispatcher{
		engine:    engine,
		output:    output,
		telemetry: collector,
		logger:    logging.Discard(),
		clock:     time.Now,
		infos:     newInfos(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithField("component", "dispatcher")

	return d
}

// Register records the command's metadata and registers it with the engine
func (d *Dispatcher) Register(desc Descriptor) {
	name := CommandName(desc.Pattern)
	d.infos.set(Info{Name: name, Description: desc.Description})

	d.engine.Command(desc.Pattern, desc.Description,
		func(schema Schema) {
			schema.DisableVersion()
			if desc.Options != nil {
				desc.Options(schema)
			}
		},
		func(ctx context.Context, args Args) {
			d.invoke(ctx, name, desc.Handler, args)
		},
	)
}

// SetHasInternalError marks the running invocation as not representative,
// which suppresses its telemetry. Safe to call from handler goroutines.
func (d *Dispatcher) SetHasInternalError() {
	d.hasInternalError.Store(true)
}

// CommandInfos returns the registry of command metadata
func (d *Dispatcher) CommandInfos() *Infos {
	return d.infos
}

// Result returns the outcome of the last invocation
func (d *Dispatcher) Result() InvocationResult {
	return d.result
}

// Run executes argv (without the program name) through the engine.
// Parse errors are reported like handler failures.
func (d *Dispatcher) Run(ctx context.Context, argv []string) InvocationResult {
	d.argv = append([]string(nil), argv...)
	d.result = InvocationResult{ExitCode: ExitSuccess}

	if err := d.engine.Execute(ctx, d.argv); err != nil {
		d.report(err)
		d.result.ExitCode = ExitFailure
	}

	return d.result
}

// invoke runs one matched command
func (d *Dispatcher) invoke(ctx context.Context, name string, handler Handler, args Args) {
	// a handler that never returns leaves the failure code in place
	d.result.ExitCode = ExitFailure
	d.hasInternalError.Store(false)

	d.output.WriteVerboseLine(fmt.Sprintf("Invoking command %q with args %s", name, args))
	sw := stopwatch.StartWithClock(d.clock)

	if err := d.call(ctx, name, handler, args); err != nil {
		d.report(err)
		return
	}

	d.output.WriteVerboseLine(fmt.Sprintf("Invoked command %q done (%s)", name, sw))
	sw.Stop()

	if !d.hasInternalError.Load() {
		d.submit(telemetry.Record{
			CommandName:       name,
			Args:              append([]string{}, d.argv...),
			DurationInSeconds: sw.Duration(),
			StartTimestampMs:  sw.StartTime(),
			EndTimestampMs:    sw.EndTime(),
		})
	}

	d.result.ExitCode = ExitSuccess
}

// call runs handler and turns a panic into an error
func (d *Dispatcher) call(ctx context.Context, name string, handler Handler, args Args) (err error) {
	if handler == nil {
		return fmt.Errorf("command %q has no handler", name)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"command": name,
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Debug("command handler panicked")
			err = fmt.Errorf("command %q panicked: %v", name, r)
		}
	}()

	return handler(ctx, args, d.output)
}

// submit hands record to the collector; a misbehaving collector must not
// change the outcome of the invocation
func (d *Dispatcher) submit(record telemetry.Record) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"command": record.CommandName,
				"panic":   r,
			}).Warn("telemetry collector panicked")
		}
	}()

	d.telemetry.CollectTelemetry(record)
	d.logger.WithFields(logrus.Fields{
		"command":  record.CommandName,
		"duration": record.DurationInSeconds,
	}).Debug("telemetry submitted")
}

// report writes err as a single error line. Errors without a message are
// not reported; some collaborators fail that way on purpose.
func (d *Dispatcher) report(err error) {
	if msg := err.Error(); msg != "" {
		d.output.WriteErrorLine(msg)
	}
}

var _ InternalErrorReporter = (*Dispatcher)(nil)

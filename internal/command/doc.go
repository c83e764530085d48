// Package command binds subcommands to handlers and runs them under a
// uniform invocation contract.
//
// A Dispatcher registers Descriptors with an argument-parsing Engine and
// keeps the name and description of every command for listings. When the
// engine matches a command, the dispatcher:
//
//   - sets the exit code to ExitFailure before the handler runs,
//   - times the handler with a stopwatch,
//   - on success submits a telemetry record (unless a collaborator called
//     SetHasInternalError) and sets the exit code to ExitSuccess,
//   - on failure writes the error message as a single error line.
//
// Handler failures, including panics, never escape the dispatcher. The
// process boundary reads the exit code from the InvocationResult returned
// by Run.
package command

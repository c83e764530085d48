// Package telemetry records successful command invocations.
//
// The dispatcher hands a Record to a Service after every successful run.
// The Service never blocks the caller: records are queued, batched by a
// background worker and written to a Store. Store failures are logged and
// otherwise ignored, so telemetry can never change a command's outcome.
package telemetry

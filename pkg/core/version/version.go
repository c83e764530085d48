// ============================================================================
// sparo - Sparse checkout helper
// ============================================================================
//
// Package:     version
// Description: Central version information for the sparo binary
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Sparo is the released CLI version
	Sparo = "1.0.0"

	// TelemetrySchema is the version of the persisted telemetry layout
	TelemetrySchema = "1"
)

// Overridden at build time via -ldflags
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// String returns the version line printed by `sparo --version`
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s %s/%s)",
		Sparo, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

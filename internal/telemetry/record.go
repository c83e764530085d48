package telemetry

// Record describes one successful command invocation
type Record struct {
	ID                string   `json:"id"`
	CommandName       string   `json:"commandName"`
	Args              []string `json:"args"`
	DurationInSeconds float64  `json:"durationInSeconds"`
	StartTimestampMs  int64    `json:"startTimestampMs"`
	EndTimestampMs    int64    `json:"endTimestampMs"`
}

// Nop is a collector that drops every record. It is used when telemetry
// is disabled.
type Nop struct{}

// CollectTelemetry drops r
func (Nop) CollectTelemetry(Record) {}

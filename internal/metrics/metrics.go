// Package metrics records seating activity. Recorder has a Prometheus-backed
// implementation for the service and a no-op one for tests and the CLI.
package metrics

import "time"

// Recorder receives measurements from the HTTP layer.
type Recorder interface {
	// ObserveArrangement records a successful arrangement.
	ObserveArrangement(diversify bool, people, tables, sameDepartmentPairs int, elapsed time.Duration)
	// ObserveArrangementFailure records an arrangement request rejected with reason.
	ObserveArrangementFailure(reason string)
	// ObserveExport records a served download.
	ObserveExport(format string)
}

// Nop discards every measurement.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) ObserveArrangement(bool, int, int, int, time.Duration) {}

func (Nop) ObserveArrangementFailure(string) {}

func (Nop) ObserveExport(string) {}

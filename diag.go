package paintcore

import "sync/atomic"

// Anomaly classifies a recoverable input or pipeline irregularity.
// Anomalies feed observability tooling only and never drive control
// flow.
type Anomaly uint8

const (
	// AnomalyMixedSource is a sample from a different source arriving
	// inside an active session.
	AnomalyMixedSource Anomaly = iota

	// AnomalyMissingSeed is a native Down with no host-side seed event.
	AnomalyMissingSeed

	// AnomalyStrokeTailDrop is a stale Up from a superseded stroke.
	AnomalyStrokeTailDrop

	// AnomalySequenceRewind is a native sample arriving with a sequence
	// number at or below the last consumed one.
	AnomalySequenceRewind

	// AnomalyEpochReset is a ring-buffer epoch mismatch forcing a
	// cursor resync.
	AnomalyEpochReset

	// AnomalyDuplicateDown is a duplicate pointer-down suppressed
	// inside the tuning policy's suppression window.
	AnomalyDuplicateDown

	anomalyCount
)

// String returns the anomaly name.
func (a Anomaly) String() string {
	switch a {
	case AnomalyMixedSource:
		return "mixed_source"
	case AnomalyMissingSeed:
		return "missing_seed"
	case AnomalyStrokeTailDrop:
		return "stroke_tail_drop"
	case AnomalySequenceRewind:
		return "sequence_rewind"
	case AnomalyEpochReset:
		return "epoch_reset"
	case AnomalyDuplicateDown:
		return "duplicate_down"
	default:
		return "unknown"
	}
}

// Diagnostics is a fire-and-forget sink for anomaly counters. It is
// injected explicitly into each component; there is no ambient global
// registry. Implementations must be safe for concurrent use.
type Diagnostics interface {
	Count(a Anomaly)
}

// NopDiagnostics discards all counts.
type NopDiagnostics struct{}

// Count implements Diagnostics.
func (NopDiagnostics) Count(Anomaly) {}

// CounterDiagnostics accumulates anomaly counts atomically.
type CounterDiagnostics struct {
	counts [anomalyCount]atomic.Uint64
}

// NewCounterDiagnostics creates an empty counter sink.
func NewCounterDiagnostics() *CounterDiagnostics {
	return &CounterDiagnostics{}
}

// Count implements Diagnostics.
func (d *CounterDiagnostics) Count(a Anomaly) {
	if int(a) < len(d.counts) {
		d.counts[a].Add(1)
	}
}

// Value returns the accumulated count for one anomaly class.
func (d *CounterDiagnostics) Value(a Anomaly) uint64 {
	if int(a) >= len(d.counts) {
		return 0
	}
	return d.counts[a].Load()
}

var _ Diagnostics = NopDiagnostics{}
var _ Diagnostics = (*CounterDiagnostics)(nil)

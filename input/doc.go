// Package input normalizes raw events from up to three input sources
// (two native tablet streams and the standard windowed pointer channel)
// into the canonical paintcore.InputSample stream, and routes native
// samples into discrete stroke sessions.
//
// Native sources push into a bounded [Ring] with monotonic sequence
// numbers and an epoch counter; the [Normalizer] pulls from the ring
// with a cursor so no sample is read twice. The [Router] then resolves
// stroke membership: only samples belonging to the most recent stroke
// that has seen an explicit Down are forwarded.
package input

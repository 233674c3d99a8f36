// Package stroke ties the pipeline together: the stroke lifecycle
// state machine (Idle, Starting, Active, Finishing), the per-frame
// sample queue, pointer session tracking, and the fixed-cadence frame
// driver that drains samples into the accumulator and triggers one
// display composite per frame.
package stroke

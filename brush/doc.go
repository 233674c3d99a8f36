// Package brush is the dab generator: it consumes the ordered sample
// stream of an active stroke and emits discrete dab placements at a
// spacing policy derived from brush size, with pressure shaped by a
// configurable curve, a sliding-window smoother, and a speed sensor.
package brush

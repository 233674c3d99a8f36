// Package accum holds the stroke accumulator: an off-layer scratch
// buffer that dabs are stamped into while a stroke is live, committed
// onto the destination layer in a single atomic step at stroke end.
//
// Two backends implement the Accumulator contract. The CPU backend in
// this package renders erf-based Gaussian soft dabs with alpha-darken
// compositing. The wgpu backend lives in accum/gpu and registers
// itself through a blank import:
//
//	import _ "github.com/gogpu/paintcore/accum/gpu"
//
// Backend selection goes through the registry; a GPU device fault
// downgrades the session to the CPU backend and never upgrades back.
package accum

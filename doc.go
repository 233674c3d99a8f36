// Package paintcore is the input-to-pixel pipeline of a raster painting
// application. It turns a stream of heterogeneous pointer and tablet samples
// into committed brush strokes on a layer.
//
// # Overview
//
// The pipeline is organized as a chain of small components:
//
//	input sources -> input.Normalizer -> input.Router -> stroke.Machine
//	    -> brush.Engine -> accum.Accumulator -> (per frame) stroke.FrameDriver
//
// The root package holds the canonical data types shared by every stage:
// [InputSample] (one normalized input event in canvas space), [DabPlacement]
// (one brush stamp), [Pixmap] (a raw RGBA pixel buffer), and [Rect] (integer
// dirty rectangles). It also defines the contracts to external collaborators:
// [LayerStore] for the destination layer and [Diagnostics] for fire-and-forget
// anomaly counters.
//
// # Backends
//
// Stroke accumulation has two interchangeable backends: a pure-Go CPU
// rasterizer and a GPU backend built on gogpu/wgpu. The GPU backend is
// enabled by a blank import:
//
//	import _ "github.com/gogpu/paintcore/accum/gpu"
//
// If the GPU backend reports an unrecoverable fault mid-stroke, the active
// stroke is aborted and all subsequent strokes fall back to the CPU backend
// for the remainder of the session.
//
// # Coordinate System
//
// Canvas space uses standard computer graphics coordinates: origin at
// top-left, X increases right, Y increases down. Angles are in radians
// unless a field name says otherwise.
//
// # Logging
//
// By default paintcore produces no log output. Call [SetLogger] to enable
// structured logging via log/slog.
package paintcore

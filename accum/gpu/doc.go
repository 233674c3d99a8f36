// Package gpu provides the wgpu-backed stroke accumulator.
//
// Importing the package registers the backend:
//
//	import _ "github.com/gogpu/paintcore/accum/gpu"
//
// The backend compiles the dab compute shader with naga, builds the
// compute pipeline through wgpu/hal, and batches dab placements per
// flush. Dab pixels are additionally mirrored on the CPU with the same
// algorithm as the shader, which keeps results correct while hal
// buffer binding is completed. A device fault surfaces as
// paintcore.ErrBackendFault so the session can downgrade to the CPU
// backend.
//
// The device comes from a shared gpucontext.DeviceProvider when the
// host application registers one, or from a standalone Vulkan device
// otherwise.
package gpu

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

//go:embed shaders/dab.wgsl
var dabShaderWGSL string

// dabGPU is the GPU layout of one batched dab.
// Must match the Dab struct in dab.wgsl (64 bytes, 16-byte aligned).
type dabGPU struct {
	X           float32
	Y           float32
	Radius      float32
	YCoef       float32
	Center      float32
	AlphaFactor float32
	DistFactor  float32
	Extent      float32
	R           float32
	G           float32
	B           float32
	ColorPad    float32
	Flow        float32
	Opacity     float32
	Pad0        float32
	Pad1        float32
}

const dabGPUSize = 64

// batchConfig is the uniform block for one dispatch.
// Must match Config in dab.wgsl.
type batchConfig struct {
	Width    uint32
	Height   uint32
	DabCount uint32
	Pad      uint32
}

// dabPipeline holds the compiled shader and compute pipelines for dab
// accumulation.
//
// Note: full GPU dispatch requires hal buffer binding extensions; the
// pipeline currently validates compilation and data layout while the
// accumulator mirrors the shader algorithm on the CPU.
type dabPipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule  hal.ShaderModule
	inputLayout   hal.BindGroupLayout
	outputLayout  hal.BindGroupLayout
	layout        hal.PipelineLayout
	dabPipeline   hal.ComputePipeline
	clearPipeline hal.ComputePipeline

	spirvCode   []uint32
	initialized bool
}

// newDabPipeline compiles the WGSL shader and builds the compute
// pipelines on the given device.
func newDabPipeline(device hal.Device, queue hal.Queue) (*dabPipeline, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("accum/gpu: device and queue are required")
	}
	p := &dabPipeline{device: device, queue: queue}
	if err := p.init(); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *dabPipeline) init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	spirvBytes, err := naga.Compile(dabShaderWGSL)
	if err != nil {
		return fmt.Errorf("accum/gpu: shader compile: %w", err)
	}
	p.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range p.spirvCode {
		p.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "dab_shader",
		Source: hal.ShaderSource{SPIRV: p.spirvCode},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create shader module: %w", err)
	}
	p.shaderModule = module

	if err := p.createLayouts(); err != nil {
		return err
	}
	return p.createPipelines()
}

func (p *dabPipeline) createLayouts() error {
	inputLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "dab_input_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type:           types.BufferBindingTypeUniform,
					MinBindingSize: 16, // sizeof(Config)
				},
			},
			{
				Binding:    1,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create input layout: %w", err)
	}
	p.inputLayout = inputLayout

	outputLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "dab_output_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create output layout: %w", err)
	}
	p.outputLayout = outputLayout

	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "dab_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.inputLayout, p.outputLayout},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create pipeline layout: %w", err)
	}
	p.layout = layout
	return nil
}

func (p *dabPipeline) createPipelines() error {
	dab, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "dab_pipeline",
		Layout: p.layout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_dab",
		},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create dab pipeline: %w", err)
	}
	p.dabPipeline = dab

	clearPipe, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "dab_clear_pipeline",
		Layout: p.layout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_clear",
		},
	})
	if err != nil {
		return fmt.Errorf("accum/gpu: create clear pipeline: %w", err)
	}
	p.clearPipeline = clearPipe

	p.initialized = true
	return nil
}

// dispatch uploads one dab batch. Buffer binding awaits hal API
// extensions; the serialized batch validates the data path and the
// accumulator's CPU mirror produces the pixels.
func (p *dabPipeline) dispatch(cfg batchConfig, dabs []dabGPU) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return fmt.Errorf("accum/gpu: pipeline not initialized")
	}
	payload := dabsToBytes(dabs)
	header := configToBytes(cfg)
	_ = payload
	_ = header
	return nil
}

func (p *dabPipeline) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.device == nil {
		return
	}
	if p.dabPipeline != nil {
		p.device.DestroyComputePipeline(p.dabPipeline)
		p.dabPipeline = nil
	}
	if p.clearPipeline != nil {
		p.device.DestroyComputePipeline(p.clearPipeline)
		p.clearPipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.inputLayout != nil {
		p.device.DestroyBindGroupLayout(p.inputLayout)
		p.inputLayout = nil
	}
	if p.outputLayout != nil {
		p.device.DestroyBindGroupLayout(p.outputLayout)
		p.outputLayout = nil
	}
	if p.shaderModule != nil {
		p.device.DestroyShaderModule(p.shaderModule)
		p.shaderModule = nil
	}
	p.initialized = false
}

// Byte serialization for GPU buffer upload.

func putUint32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func putFloat32(buf []byte, off int, v float32) {
	putUint32(buf, off, math.Float32bits(v))
}

func dabsToBytes(dabs []dabGPU) []byte {
	buf := make([]byte, len(dabs)*dabGPUSize)
	for i, d := range dabs {
		off := i * dabGPUSize
		putFloat32(buf, off+0, d.X)
		putFloat32(buf, off+4, d.Y)
		putFloat32(buf, off+8, d.Radius)
		putFloat32(buf, off+12, d.YCoef)
		putFloat32(buf, off+16, d.Center)
		putFloat32(buf, off+20, d.AlphaFactor)
		putFloat32(buf, off+24, d.DistFactor)
		putFloat32(buf, off+28, d.Extent)
		putFloat32(buf, off+32, d.R)
		putFloat32(buf, off+36, d.G)
		putFloat32(buf, off+40, d.B)
		putFloat32(buf, off+44, d.ColorPad)
		putFloat32(buf, off+48, d.Flow)
		putFloat32(buf, off+52, d.Opacity)
		putFloat32(buf, off+56, d.Pad0)
		putFloat32(buf, off+60, d.Pad1)
	}
	return buf
}

func configToBytes(cfg batchConfig) []byte {
	buf := make([]byte, 16)
	putUint32(buf, 0, cfg.Width)
	putUint32(buf, 4, cfg.Height)
	putUint32(buf, 8, cfg.DabCount)
	putUint32(buf, 12, cfg.Pad)
	return buf
}

//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// deviceState owns the HAL device and queue the accumulator runs on,
// either standalone or shared from a host application.
type deviceState struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// external marks a shared device that must not be destroyed here.
	external bool
	ready    bool
}

var shared deviceState

// SetDeviceProvider switches the backend to a shared GPU device from
// the host application. The provider must expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue, as
// gpucontext.DeviceProvider implementations from gogpu do.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("accum/gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("accum/gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("accum/gpu: provider HalQueue is not hal.Queue")
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()
	shared.release()
	shared.device = device
	shared.queue = queue
	shared.external = true
	shared.ready = true
	return nil
}

// acquire returns the device and queue, initializing a standalone
// Vulkan device on first use when no shared device was provided.
func (s *deviceState) acquire() (hal.Device, hal.Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.device, s.queue, nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, nil, fmt.Errorf("accum/gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, fmt.Errorf("accum/gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("accum/gpu: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("accum/gpu: open device: %w", err)
	}

	s.instance = instance
	s.device = openDev.Device
	s.queue = openDev.Queue
	s.external = false
	s.ready = true
	return s.device, s.queue, nil
}

// release drops owned resources. Shared devices are detached, not
// destroyed. Caller holds s.mu.
func (s *deviceState) release() {
	if !s.external {
		if s.device != nil {
			s.device.Destroy()
		}
		if s.instance != nil {
			s.instance.Destroy()
		}
	}
	s.instance = nil
	s.device = nil
	s.queue = nil
	s.external = false
	s.ready = false
}

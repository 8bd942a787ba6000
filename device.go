package imageanneal

import (
	"fmt"

	"github.com/gogpu/wgpu"
)

// DevicePollType selects how a caller wants to wait for outstanding GPU
// work when draining a readback (spec.md §4.7's "Full-output readback").
type DevicePollType int

const (
	// PollWait blocks until the device has finished all submitted work.
	PollWait DevicePollType = iota
	// PollOnce returns after a single non-blocking check, regardless of
	// whether the work has finished.
	PollOnce
)

// DeviceManager owns the GPU instance, adapter, device, and queue this
// module's components are built on (spec.md's Device Manager component).
// It is the one place construction can fail with a DeviceRequestError.
type DeviceManager struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	released bool
}

// NewDeviceManager requests the best available adapter and a device from
// it, mirroring the teacher's CreateInstance → RequestAdapter →
// RequestDevice chain (instance.go, adapter.go).
func NewDeviceManager() (*DeviceManager, error) {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, &DeviceRequestError{Cause: err}
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, &DeviceRequestError{Cause: err}
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, &DeviceRequestError{Cause: err}
	}
	return &DeviceManager{instance: instance, adapter: adapter, device: device}, nil
}

// Device returns the underlying wgpu device for components that build
// resources and pipelines directly against it.
func (m *DeviceManager) Device() *wgpu.Device {
	return m.device
}

// Queue returns the device's command queue.
func (m *DeviceManager) Queue() *wgpu.Queue {
	return m.device.Queue()
}

// HasComputeBackend reports whether this manager was handed a real GPU
// backend, as opposed to the mock adapter path the teacher's instance
// falls back to when no backend is registered (wgpu_test.go's
// requireHAL check, adapted here as an exported predicate instead of a
// test-only helper; this module's tests use it to skip GPU-backed cases,
// and neither NewDispatcher nor cmd/imageanneal calls it).
func (m *DeviceManager) HasComputeBackend() bool {
	return m.Queue() != nil
}

// Poll waits for (PollWait) or checks (PollOnce) outstanding GPU work.
// PollOnce never blocks: the teacher's Queue.Submit/ReadBuffer already run
// synchronously to completion, so by the time any call returns there is
// nothing left pending to report on a single check.
func (m *DeviceManager) Poll(pollType DevicePollType) error {
	if m.released {
		return fmt.Errorf("imageanneal: device manager already released")
	}
	if pollType == PollWait {
		return m.device.WaitIdle()
	}
	return nil
}

// Release tears down the device, adapter, and instance in reverse
// construction order, mirroring the teacher's released-bool discipline.
func (m *DeviceManager) Release() {
	if m.released {
		return
	}
	m.released = true
	m.device.Release()
	m.adapter.Release()
	m.instance.Release()
}

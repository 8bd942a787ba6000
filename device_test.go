package imageanneal_test

import (
	"testing"

	"github.com/gogpu/imageanneal"

	// Registers the noop HAL backend so CreateInstance always succeeds in
	// headless CI; absent a real GPU backend the mock adapter path is used
	// instead, which requireCompute below detects and skips around.
	_ "github.com/gogpu/wgpu/hal/noop"
)

// requireCompute skips the test if the device has no real GPU backend
// behind it, the same convention the teacher's wgpu_test.go uses for
// requireHAL.
func requireCompute(t *testing.T, m *imageanneal.DeviceManager) {
	t.Helper()
	if !m.HasComputeBackend() {
		t.Skip("skipping: device has no HAL integration (mock adapter; no real GPU backend available)")
	}
}

func TestNewDeviceManager(t *testing.T) {
	m, err := imageanneal.NewDeviceManager()
	if err != nil {
		t.Fatalf("NewDeviceManager: %v", err)
	}
	defer m.Release()

	if m.Device() == nil {
		t.Fatal("Device() returned nil")
	}
}

func TestDeviceManagerPollOnceNeverBlocks(t *testing.T) {
	m, err := imageanneal.NewDeviceManager()
	if err != nil {
		t.Fatalf("NewDeviceManager: %v", err)
	}
	defer m.Release()

	if err := m.Poll(imageanneal.PollOnce); err != nil {
		t.Errorf("Poll(PollOnce): %v", err)
	}
}

func TestDeviceManagerPollWait(t *testing.T) {
	m, err := imageanneal.NewDeviceManager()
	if err != nil {
		t.Fatalf("NewDeviceManager: %v", err)
	}
	defer m.Release()
	requireCompute(t, m)

	if err := m.Poll(imageanneal.PollWait); err != nil {
		t.Errorf("Poll(PollWait): %v", err)
	}
}

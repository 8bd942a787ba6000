package imageanneal_test

import (
	"testing"

	"github.com/gogpu/imageanneal"
	"github.com/gogpu/imageanneal/internal/shadertext"

	_ "github.com/gogpu/wgpu/hal/noop"
)

// placeholderWGSL stands in for the five externally-assembled kernel
// bodies this module never authors; it only needs to satisfy
// shadertext.Validate and bind group construction, not compute anything
// meaningful, the same role manager_test.go's copy plays one package down.
const placeholderWGSL = `
@group(0) @binding(0)
var<storage, read_write> data: array<u32>;

@compute @workgroup_size(16, 16, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[0] = data[0];
}
`

func placeholderShaderSet() shadertext.Set {
	cfg := shadertext.Config{Body: placeholderWGSL, EntryPoint: "main"}
	return shadertext.Set{
		CreatePermutation:      cfg,
		Permute:                cfg,
		Swap:                   cfg,
		CountSwap:              cfg,
		CreateDisplacementGoal: cfg,
	}
}

// newTestDispatcher skips the test outright if no real GPU backend is
// registered, then builds a Dispatcher sized to dims against the
// placeholder shader set.
func newTestDispatcher(t *testing.T, dims imageanneal.ImageDimensions, bytesPerPixel int) *imageanneal.Dispatcher {
	t.Helper()
	probe, err := imageanneal.NewDeviceManager()
	if err != nil {
		t.Fatalf("NewDeviceManager: %v", err)
	}
	requireCompute(t, probe)
	probe.Release()

	d, err := imageanneal.NewDispatcher(dims, bytesPerPixel, placeholderShaderSet())
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	t.Cleanup(d.Release)
	return d
}

// runToTerminal steps alg until it reaches a terminal status or errors,
// the same drive loop cmd/imageanneal's runToCompletion uses.
func runToTerminal(t *testing.T, alg imageanneal.Algorithm) imageanneal.OutputStatus {
	t.Helper()
	for i := 0; i < 1000; i++ {
		status, err := alg.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if status.Terminal() {
			return status
		}
	}
	t.Fatal("algorithm did not reach a terminal status within 1000 steps")
	return 0
}

// Package imageanneal computes a pixel permutation of an image that
// approximates a target per-pixel displacement goal, by iteratively
// improving a candidate permutation on the GPU with a local-swap,
// simulated-annealing-style optimizer.
//
// # Quick Start
//
// A Dispatcher owns every GPU resource needed for a fixed image size.
// Each operation consumes the Dispatcher and returns an Algorithm bound to
// that operation; stepping the Algorithm to a terminal status returns the
// Dispatcher so the next operation can be requested.
//
//	dispatcher, err := imageanneal.NewDispatcher(dims, 4, shaders)
//	algo := dispatcher.CreatePermutation()
//	for {
//	    status, err := algo.Step()
//	    if err != nil { ... }
//	    if status.Terminal() {
//	        break
//	    }
//	}
//	permutation := algo.(*imageanneal.CreatePermutationAlgorithm).FullOutput()
//	dispatcher = algo.ReturnToDispatcher()
//
// # GPU Dependency
//
// All GPU resource creation and command submission goes through
// github.com/gogpu/wgpu. Register a backend via blank import before
// constructing a Dispatcher:
//
//	_ "github.com/gogpu/wgpu/hal/allbackends"
//
// # Resource Lifecycle
//
// At most one Algorithm exists per Dispatcher at a time: requesting a new
// operation before the previous Algorithm reaches a terminal status and
// returns the Dispatcher panics, the same discipline wgpu.Device applies to
// released resources.
package imageanneal

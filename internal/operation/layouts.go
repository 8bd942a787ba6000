package operation

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/imageanneal/internal/binding"
)

func storageEntry(index uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    index,
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
	}
}

// uniformEntry is for the read-only parameters slots spec.md §4.4 marks
// (uniform): swap_parameters and count_swap_parameters.
func uniformEntry(index uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    index,
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
}

// createPermutationLayout mirrors spec.md §4.4's create_permutation
// bind group: a single write-only output slot.
var createPermutationLayout = []wgpu.BindGroupLayoutEntry{
	storageEntry(binding.CreatePermutationOutputIndex),
}

// permuteLayout mirrors permute's three-slot bind group.
var permuteLayout = []wgpu.BindGroupLayoutEntry{
	storageEntry(binding.PermuteInputPermutationIndex),
	storageEntry(binding.PermuteInputImageIndex),
	storageEntry(binding.PermuteOutputImageIndex),
}

// swapLayout mirrors swap's five-slot bind group (parameters, goal,
// input/output permutation, per-pass count output).
var swapLayout = []wgpu.BindGroupLayoutEntry{
	uniformEntry(binding.SwapParametersIndex),
	storageEntry(binding.SwapDisplacementGoalIndex),
	storageEntry(binding.SwapInputPermutationIndex),
	storageEntry(binding.SwapOutputPermutationIndex),
	storageEntry(binding.SwapCountOutputIndex),
}

// countSwapLayout mirrors count_swap's three-slot reduction bind group.
var countSwapLayout = []wgpu.BindGroupLayoutEntry{
	uniformEntry(binding.CountSwapParametersIndex),
	storageEntry(binding.CountSwapInputIndex),
	storageEntry(binding.CountSwapOutputIndex),
}

// createDisplacementGoalLayout mirrors create_displacement_goal's
// four-slot bind group.
var createDisplacementGoalLayout = []wgpu.BindGroupLayoutEntry{
	storageEntry(binding.CreateDisplacementGoalInputGoalIndex),
	storageEntry(binding.CreateDisplacementGoalInputPermutationIndex),
	storageEntry(binding.CreateDisplacementGoalInputImageIndex),
	storageEntry(binding.CreateDisplacementGoalOutputIndex),
}

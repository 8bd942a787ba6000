package operation

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/imageanneal/internal/binding"
	"github.com/gogpu/imageanneal/internal/shadertext"
)

// CreatePermutation writes the identity permutation into
// permutation_output_texture and reads it back, unpadded.
// Grounded on spec.md §4.4's create_permutation bind group (a single
// write-only output) and §4.6's "encodes one command buffer per
// operation invocation".
func (m *Manager) CreatePermutation() ([]byte, error) {
	group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "create_permutation",
		Layout:  m.layoutFor(createPermutationLayout, "create_permutation"),
		Entries: []wgpu.BindGroupEntry{bufferBinding(binding.CreatePermutationOutputIndex, m.permutationOutput)},
	})
	if err != nil {
		return nil, fmt.Errorf("operation: create_permutation bind group: %w", err)
	}
	grid := binding.FromExtent(uint32(m.width), uint32(m.height), 1)
	if err := m.dispatch("create_permutation", m.createPermutation, group, grid); err != nil {
		return nil, err
	}
	m.tracker.MarkWritten(ResPermutationOutput, ResDisplacementGoalInput)

	padded := make([]byte, m.permutationPad.StagingByteSize(m.height))
	if err := m.queue.ReadBuffer(m.permutationOutput, 0, padded); err != nil {
		return nil, fmt.Errorf("operation: create_permutation readback: %w", err)
	}
	return m.permutationPad.Unpad(padded, m.height), nil
}

// Permute applies permutationBytes (big-endian-decoded, native-packed by
// the caller) to imageBytes, honoring the Stale/Unwritten reuse policy
// from spec.md §4.5: if permutationBytes is nil, the cached
// permutation_input_texture must already be Written.
func (m *Manager) Permute(permutationBytes, imageBytes []byte) ([]byte, error) {
	if err := m.tracker.RequireFreshOrProvided(ResPermutationInput, permutationBytes != nil); err != nil {
		return nil, err
	}
	if permutationBytes != nil {
		if err := m.queue.WriteBuffer(m.permutationInput, 0, m.permutationPad.Pad(permutationBytes, m.height)); err != nil {
			return nil, fmt.Errorf("operation: permute input permutation: %w", err)
		}
		m.tracker.MarkWritten(ResPermutationInput)
	}
	if err := m.queue.WriteBuffer(m.imageInput, 0, m.imagePad.Pad(imageBytes, m.height)); err != nil {
		return nil, fmt.Errorf("operation: permute input image: %w", err)
	}
	m.tracker.MarkWritten(ResImageInput)

	group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "permute",
		Layout: m.layoutFor(permuteLayout, "permute"),
		Entries: []wgpu.BindGroupEntry{
			bufferBinding(binding.PermuteInputPermutationIndex, m.permutationInput),
			bufferBinding(binding.PermuteInputImageIndex, m.imageInput),
			bufferBinding(binding.PermuteOutputImageIndex, m.imageOutput),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("operation: permute bind group: %w", err)
	}
	grid := binding.FromExtent(uint32(m.width), uint32(m.height), 1)
	if err := m.dispatch("permute", m.permute, group, grid); err != nil {
		return nil, err
	}
	m.tracker.MarkWritten(ResImageOutput)

	padded := make([]byte, m.imagePad.StagingByteSize(m.height))
	if err := m.queue.ReadBuffer(m.imageOutput, 0, padded); err != nil {
		return nil, fmt.Errorf("operation: permute readback: %w", err)
	}
	return m.imagePad.Unpad(padded, m.height), nil
}

// SwapResult is one swap-pass dispatch's outputs: the new permutation
// and the four-element partial count_swap reduced this dispatch's raw
// accept/reject flags down to (one slot per SwapPass, spec.md §9's
// "do not fold the pass dimension on GPU"). The caller accumulates
// these partials across passes and combines them with
// CombineCountSwapPartials; this manager never sums across calls.
type SwapResult struct {
	Permutation []byte
	Partial     [4]float64
}

// Swap dispatches one swap pass and its count_swap reduction.
// paramBytes is the caller's encoding of SwapPass + threshold (left to
// the caller, since the concrete layout is shader-contract territory
// this manager does not author); xStride/yStride come from
// SwapPass.Stride() and fix §4.4's workgroup grid policy per pass
// family.
func (m *Manager) Swap(permutationBytes, goalBytes, paramBytes []byte, xStride, yStride uint32) (SwapResult, error) {
	if err := m.tracker.RequireFreshOrProvided(ResPermutationInput, permutationBytes != nil); err != nil {
		return SwapResult{}, err
	}
	if permutationBytes != nil {
		if err := m.queue.WriteBuffer(m.permutationInput, 0, m.permutationPad.Pad(permutationBytes, m.height)); err != nil {
			return SwapResult{}, fmt.Errorf("operation: swap input permutation: %w", err)
		}
		m.tracker.MarkWritten(ResPermutationInput)
	}
	if err := m.tracker.RequireFreshOrProvided(ResDisplacementGoalInput, goalBytes != nil); err != nil {
		return SwapResult{}, err
	}
	if goalBytes != nil {
		if err := m.queue.WriteBuffer(m.goalInput, 0, m.goalPad.Pad(goalBytes, m.height)); err != nil {
			return SwapResult{}, fmt.Errorf("operation: swap input goal: %w", err)
		}
		m.tracker.MarkWritten(ResDisplacementGoalInput)
	}

	if err := m.queue.WriteBuffer(m.swapParams, 0, paramBytes); err != nil {
		return SwapResult{}, fmt.Errorf("operation: swap parameters: %w", err)
	}

	group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "swap",
		Layout: m.layoutFor(swapLayout, "swap"),
		Entries: []wgpu.BindGroupEntry{
			bufferBinding(binding.SwapParametersIndex, m.swapParams),
			bufferBinding(binding.SwapDisplacementGoalIndex, m.goalInput),
			bufferBinding(binding.SwapInputPermutationIndex, m.permutationInput),
			bufferBinding(binding.SwapOutputPermutationIndex, m.permutationOutput),
			bufferBinding(binding.SwapCountOutputIndex, m.swapCountRaw),
		},
	})
	if err != nil {
		return SwapResult{}, fmt.Errorf("operation: swap bind group: %w", err)
	}
	grid := binding.FromExtentAndStride(uint32(m.width), uint32(m.height), 1, xStride, yStride)
	if err := m.dispatch("swap", m.swap, group, grid); err != nil {
		return SwapResult{}, err
	}
	m.tracker.MarkWritten(ResPermutationOutput, ResDisplacementGoalInput)

	if err := m.queue.WriteBuffer(m.countSwapParams, 0, paramBytes); err != nil {
		return SwapResult{}, fmt.Errorf("operation: count_swap parameters: %w", err)
	}
	reduceGroup, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "count_swap",
		Layout: m.layoutFor(countSwapLayout, "count_swap"),
		Entries: []wgpu.BindGroupEntry{
			bufferBinding(binding.CountSwapParametersIndex, m.countSwapParams),
			bufferBinding(binding.CountSwapInputIndex, m.swapCountRaw),
			bufferBinding(binding.CountSwapOutputIndex, m.swapCountPartial),
		},
	})
	if err != nil {
		return SwapResult{}, fmt.Errorf("operation: count_swap bind group: %w", err)
	}
	reduceGrid := binding.GridDimensions{X: 1, Y: 1, Z: 1}
	if err := m.dispatch("count_swap", m.countSwap, reduceGroup, reduceGrid); err != nil {
		return SwapResult{}, err
	}

	paddedPerm := make([]byte, m.permutationPad.StagingByteSize(m.height))
	if err := m.queue.ReadBuffer(m.permutationOutput, 0, paddedPerm); err != nil {
		return SwapResult{}, fmt.Errorf("operation: swap readback: %w", err)
	}
	raw := make([]byte, 4*4)
	if err := m.queue.ReadBuffer(m.swapCountPartial, 0, raw); err != nil {
		return SwapResult{}, fmt.Errorf("operation: count_swap readback: %w", err)
	}
	var partial [4]float64
	for i := range partial {
		partial[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4])))
	}

	return SwapResult{Permutation: m.permutationPad.Unpad(paddedPerm, m.height), Partial: partial}, nil
}

// CreateDisplacementGoal runs the default or caller-supplied shader over
// whichever of goal/permutation/image inputs were provided, honoring the
// "absent any shader customization, write the identity goal" default
// from spec.md §4.6. cfg.Body == "" selects the default shader from the
// manager's Set; the pipeline is rebuilt iff the selected configuration
// differs from the last one used (spec.md §4.4's pipeline re-creation
// rule), after the new body passes shadertext.Validate.
func (m *Manager) CreateDisplacementGoal(goalBytes, permutationBytes, imageBytes []byte, cfg shadertext.Config) ([]byte, error) {
	if cfg.Body == "" {
		cfg = m.shaders.CreateDisplacementGoal
	}
	pipeline := m.createGoal
	if cfg.Changed(m.createGoalCfg) {
		if err := shadertext.Validate(cfg.Body); err != nil {
			return nil, err
		}
		rebuilt, err := m.buildPipeline("create_displacement_goal", cfg, createDisplacementGoalLayout)
		if err != nil {
			return nil, err
		}
		m.createGoal = rebuilt
		m.createGoalCfg = cfg
		pipeline = rebuilt
	}

	if goalBytes != nil {
		if err := m.queue.WriteBuffer(m.goalInput, 0, m.goalPad.Pad(goalBytes, m.height)); err != nil {
			return nil, fmt.Errorf("operation: create_displacement_goal input goal: %w", err)
		}
		m.tracker.MarkWritten(ResDisplacementGoalInput)
	}
	if permutationBytes != nil {
		if err := m.queue.WriteBuffer(m.permutationInput, 0, m.permutationPad.Pad(permutationBytes, m.height)); err != nil {
			return nil, fmt.Errorf("operation: create_displacement_goal input permutation: %w", err)
		}
		m.tracker.MarkWritten(ResPermutationInput)
	}
	if imageBytes != nil {
		if err := m.queue.WriteBuffer(m.imageInput, 0, m.imagePad.Pad(imageBytes, m.height)); err != nil {
			return nil, fmt.Errorf("operation: create_displacement_goal input image: %w", err)
		}
		m.tracker.MarkWritten(ResImageInput)
	}

	group, err := m.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "create_displacement_goal",
		Layout: m.layoutFor(createDisplacementGoalLayout, "create_displacement_goal"),
		Entries: []wgpu.BindGroupEntry{
			bufferBinding(binding.CreateDisplacementGoalInputGoalIndex, m.goalInput),
			bufferBinding(binding.CreateDisplacementGoalInputPermutationIndex, m.permutationInput),
			bufferBinding(binding.CreateDisplacementGoalInputImageIndex, m.imageInput),
			bufferBinding(binding.CreateDisplacementGoalOutputIndex, m.goalOutput),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("operation: create_displacement_goal bind group: %w", err)
	}
	grid := binding.FromExtent(uint32(m.width), uint32(m.height), 1)
	if err := m.dispatch("create_displacement_goal", pipeline, group, grid); err != nil {
		return nil, err
	}
	m.tracker.MarkWritten(ResDisplacementGoalOut)

	padded := make([]byte, m.goalPad.StagingByteSize(m.height))
	if err := m.queue.ReadBuffer(m.goalOutput, 0, padded); err != nil {
		return nil, fmt.Errorf("operation: create_displacement_goal readback: %w", err)
	}
	return m.goalPad.Unpad(padded, m.height), nil
}

// layoutFor returns the bind group layout a bind-group call needs: the
// one buildPipeline cached under label, or, if none is cached, a layout
// built from entries and cached for later calls. The teacher's
// BindGroupDescriptor takes the layout object a pipeline was already
// built with, so Manager's pipeline construction and its per-call bind
// groups share one source of truth for each operation's entries.
func (m *Manager) layoutFor(entries []wgpu.BindGroupLayoutEntry, label string) *wgpu.BindGroupLayout {
	if cached, ok := m.layoutCache[label]; ok {
		return cached
	}
	layout, err := m.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: label + "-layout", Entries: entries})
	if err != nil {
		// buildPipeline already validated this same descriptor
		// successfully during construction; a later failure here would
		// mean the device was lost mid-session, which every other
		// operation call would also be failing on.
		panic(fmt.Sprintf("operation: re-deriving %s bind group layout: %v", label, err))
	}
	if m.layoutCache == nil {
		m.layoutCache = make(map[string]*wgpu.BindGroupLayout)
	}
	m.layoutCache[label] = layout
	return layout
}

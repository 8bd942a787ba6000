// Package operation encodes and submits one command buffer per operation
// invocation (spec.md §4.6's Operation Manager), bridging the named GPU
// resources from internal/resource and the fixed binding contract from
// internal/binding onto the teacher's wgpu.Device/Queue/CommandEncoder
// API.
//
// The Resource Manager's named roles (spec.md §4.3) are storage textures
// on the original device; here every role is backed by a wgpu.Buffer
// bound as a storage buffer instead. The teacher's CommandEncoder
// (encoder.go) exposes CopyBufferToBuffer but no CopyTextureToBuffer or
// CopyBufferToTexture, so a texture-backed resource would have no route
// off the device through this binding's real API surface; Queue's
// WriteBuffer/ReadBuffer give every role a working host round trip
// instead, and internal/resource.RowPadding still governs the row pitch
// a real texture-backed copy would use, so the padding/unpadding
// invariant (P7) holds unchanged for any caller.
package operation

import (
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/imageanneal/internal/binding"
	"github.com/gogpu/imageanneal/internal/resource"
	"github.com/gogpu/imageanneal/internal/shadertext"
)

// swapParametersSize is the fixed byte length of the pass-identity +
// threshold uniform both swap_parameters and count_swap_parameters
// carry (see SwapAlgorithm.encodeParameters).
const swapParametersSize = 12

// Resource names tracked by this manager's resource.Tracker, mirroring
// spec.md §4.3's role list.
const (
	ResPermutationInput      = "permutation_input_texture"
	ResPermutationOutput     = "permutation_output_texture"
	ResImageInput            = "lossless_image_input_texture"
	ResImageOutput           = "lossless_image_output_texture"
	ResDisplacementGoalInput = "displacement_goal_input_texture"
	ResDisplacementGoalOut   = "displacement_goal_output_texture"
)

// Manager owns the GPU buffers, bind group layouts, and pipelines for
// the five operations, sized once from a fixed width/height at
// construction (spec.md's "All GPU resources are created sized to the
// dispatcher's fixed ImageDimensions" lifecycle rule).
type Manager struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	width, height  int
	bytesPerPixel  int
	permutationPad resource.RowPadding
	imagePad       resource.RowPadding
	goalPad        resource.RowPadding
	tracker        *resource.Tracker
	layoutCache    map[string]*wgpu.BindGroupLayout

	permutationInput  *wgpu.Buffer
	permutationOutput *wgpu.Buffer
	imageInput        *wgpu.Buffer
	imageOutput       *wgpu.Buffer
	goalInput         *wgpu.Buffer
	goalOutput        *wgpu.Buffer

	// swapParams is the uniform-role "swap_parameters" buffer (pass
	// identity + threshold), rewritten once per Swap call rather than
	// reallocated, per the dispatcher's fixed-resource-lifetime rule.
	swapParams *wgpu.Buffer
	// swapCountRaw is "count_swap_input_buffer": the swap kernel's
	// per-pixel accept/reject output, consumed by count_swap.
	swapCountRaw *wgpu.Buffer
	// swapCountPartial is "count_swap_output_storage_buffer" doubling as
	// its own staging buffer: count_swap's four-element per-dispatch
	// partial (one slot per SwapPass, spec.md §9's two-level reduction).
	swapCountPartial *wgpu.Buffer
	// countSwapParams is "count_swap_input_layout_buffer": the uniform
	// telling count_swap which pass slot this dispatch's raw flags belong to.
	countSwapParams *wgpu.Buffer

	shaders           shadertext.Set
	createPermutation *wgpu.ComputePipeline
	permute           *wgpu.ComputePipeline
	swap              *wgpu.ComputePipeline
	countSwap         *wgpu.ComputePipeline
	createGoal        *wgpu.ComputePipeline
	createGoalCfg     shadertext.Config
}

// NewManager allocates every named resource at (width, height) with the
// given per-pixel byte size for the lossless-image role (the permutation
// and displacement-goal roles are always 4 bytes per pixel: two packed
// 16-bit signed deltas), builds the five pipelines from shaders,
// and validates the whole set before touching the device.
func NewManager(device *wgpu.Device, queue *wgpu.Queue, width, height, imageBytesPerPixel int, shaders shadertext.Set) (*Manager, error) {
	if err := shaders.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		device:         device,
		queue:          queue,
		width:          width,
		height:         height,
		bytesPerPixel:  imageBytesPerPixel,
		permutationPad: resource.NewRowPadding(width, 4),
		imagePad:       resource.NewRowPadding(width, imageBytesPerPixel),
		goalPad:        resource.NewRowPadding(width, 4),
		shaders:        shaders,
		tracker: resource.NewTracker(
			ResPermutationInput, ResPermutationOutput,
			ResImageInput, ResImageOutput,
			ResDisplacementGoalInput, ResDisplacementGoalOut,
		),
	}

	var err error
	if m.permutationInput, err = m.allocBuffer("permutation_input", m.permutationPad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.permutationOutput, err = m.allocBuffer("permutation_output", m.permutationPad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.imageInput, err = m.allocBuffer("image_input", m.imagePad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.imageOutput, err = m.allocBuffer("image_output", m.imagePad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.goalInput, err = m.allocBuffer("goal_input", m.goalPad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.goalOutput, err = m.allocBuffer("goal_output", m.goalPad.StagingByteSize(height)); err != nil {
		return nil, err
	}
	if m.swapParams, err = m.allocBuffer("swap_parameters", swapParametersSize); err != nil {
		return nil, err
	}
	if m.countSwapParams, err = m.allocBuffer("count_swap_parameters", swapParametersSize); err != nil {
		return nil, err
	}
	// One accept/reject flag per pixel the swap kernel's grid visits;
	// over-provisioned to width*height so every pass's (possibly
	// strided) grid fits without reallocating per pass.
	if m.swapCountRaw, err = m.allocBuffer("count_swap_input", width*height*4); err != nil {
		return nil, err
	}
	// Four per-pass partial counts, folded by count_swap into a single
	// four-element result (spec.md §9's two-level reduction note).
	if m.swapCountPartial, err = m.allocBuffer("count_swap_output", 4*4); err != nil {
		return nil, err
	}

	if m.createPermutation, err = m.buildPipeline("create_permutation", shaders.CreatePermutation, createPermutationLayout); err != nil {
		return nil, err
	}
	if m.permute, err = m.buildPipeline("permute", shaders.Permute, permuteLayout); err != nil {
		return nil, err
	}
	if m.swap, err = m.buildPipeline("swap", shaders.Swap, swapLayout); err != nil {
		return nil, err
	}
	if m.countSwap, err = m.buildPipeline("count_swap", shaders.CountSwap, countSwapLayout); err != nil {
		return nil, err
	}
	if m.createGoal, err = m.buildPipeline("create_displacement_goal", shaders.CreateDisplacementGoal, createDisplacementGoalLayout); err != nil {
		return nil, err
	}
	m.createGoalCfg = shaders.CreateDisplacementGoal

	return m, nil
}

// Release frees every GPU buffer this manager owns. The pipelines and
// bind group layouts are owned by the device, not released here,
// mirroring the teacher's own asymmetry between Buffer.Release and
// pipeline objects that live for the device's lifetime.
func (m *Manager) Release() {
	for _, buf := range []*wgpu.Buffer{
		m.permutationInput, m.permutationOutput,
		m.imageInput, m.imageOutput,
		m.goalInput, m.goalOutput,
		m.swapParams, m.swapCountRaw, m.swapCountPartial, m.countSwapParams,
	} {
		if buf != nil {
			buf.Release()
		}
	}
}

func (m *Manager) allocBuffer(label string, size int) (*wgpu.Buffer, error) {
	buf, err := m.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("operation: allocating %s: %w", label, err)
	}
	return buf, nil
}

func (m *Manager) buildPipeline(label string, cfg shadertext.Config, entries []wgpu.BindGroupLayoutEntry) (*wgpu.ComputePipeline, error) {
	module, err := m.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{Label: label, WGSL: cfg.Body})
	if err != nil {
		return nil, fmt.Errorf("operation: %s shader module: %w", label, err)
	}
	layout, err := m.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: label + "-layout", Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("operation: %s bind group layout: %w", label, err)
	}
	if m.layoutCache == nil {
		m.layoutCache = make(map[string]*wgpu.BindGroupLayout)
	}
	m.layoutCache[label] = layout
	pipelineLayout, err := m.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "-pipeline-layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("operation: %s pipeline layout: %w", label, err)
	}
	pipeline, err := m.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      label,
		Layout:     pipelineLayout,
		Module:     module,
		EntryPoint: cfg.EntryPoint,
	})
	if err != nil {
		return nil, fmt.Errorf("operation: %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// dispatch records a single-pipeline compute pass over grid, binding
// group into slot 0, then submits and blocks until the queue drains.
func (m *Manager) dispatch(label string, pipeline *wgpu.ComputePipeline, group *wgpu.BindGroup, grid binding.GridDimensions) error {
	encoder, err := m.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("operation: %s command encoder: %w", label, err)
	}
	pass, err := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("operation: %s compute pass: %w", label, err)
	}
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.Dispatch(grid.X, grid.Y, grid.Z)
	if err := pass.End(); err != nil {
		return fmt.Errorf("operation: %s end pass: %w", label, err)
	}
	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("operation: %s finish: %w", label, err)
	}
	if err := m.queue.Submit(cmd); err != nil {
		return fmt.Errorf("operation: %s submit: %w", label, err)
	}
	return nil
}

// bufferBinding is shorthand for a whole-buffer storage/uniform entry.
func bufferBinding(index uint32, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{Binding: index, Buffer: buf, Size: buf.Size()}
}

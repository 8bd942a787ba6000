package imageanneal

import (
	"github.com/gogpu/imageanneal/internal/operation"
	"github.com/gogpu/imageanneal/internal/shadertext"
)

// Dispatcher is the entry point: constructed once per fixed image size,
// it hands out exactly one Algorithm at a time and reclaims ownership of
// its GPU resources when that Algorithm reaches a terminal state
// (spec.md §4.1).
type Dispatcher struct {
	dims   ImageDimensions
	device *DeviceManager
	ops    *operation.Manager
	inUse  bool

	// swapPartials accumulates one [4]float64 per Swap dispatch, the
	// per-call GPU-side count_swap reduction's output. CombineCountSwapPartials
	// folds these into running totals without ever folding the pass
	// dimension on GPU (spec.md §9).
	swapPartials [][4]float64
}

// NewDispatcher constructs a Dispatcher sized to dims, acquiring a
// device and allocating every named GPU resource up front (spec.md's
// "All GPU resources are created sized to the dispatcher's fixed
// ImageDimensions and live for the dispatcher's lifetime").
// imageBytesPerPixel selects the lossless-image resource's per-pixel
// size (4 for Rgba8, 8 for Rgba16, and so on per ImageFormat);
// shaders is the externally-assembled shader set for the five kernels.
func NewDispatcher(dims ImageDimensions, imageBytesPerPixel int, shaders shadertext.Set) (*Dispatcher, error) {
	device, err := NewDeviceManager()
	if err != nil {
		return nil, err
	}
	ops, err := operation.NewManager(device.Device(), device.Queue(), dims.Width(), dims.Height(), imageBytesPerPixel, shaders)
	if err != nil {
		device.Release()
		return nil, err
	}
	return &Dispatcher{dims: dims, device: device, ops: ops}, nil
}

// Release tears down the device and every GPU resource this dispatcher
// owns. Only valid when no Algorithm is currently borrowing it.
func (d *Dispatcher) Release() {
	if d.inUse {
		panic("imageanneal: Release called while an algorithm is outstanding")
	}
	d.ops.Release()
	d.device.Release()
}

// acquire marks the dispatcher as lent out, panicking if one was already
// outstanding — the Go stand-in for move semantics spec.md §9's design
// note calls for (Open Question 3, see DESIGN.md).
func (d *Dispatcher) acquire() {
	if d.inUse {
		panic(ErrDispatcherInUse)
	}
	d.inUse = true
}

// release marks the dispatcher as returned, called from an Algorithm's
// ReturnToDispatcher.
func (d *Dispatcher) release() {
	d.inUse = false
}

// CreatePermutation returns an Algorithm bound to the create_permutation
// operation: writing the identity permutation into
// permutation_output_texture.
func (d *Dispatcher) CreatePermutation() Algorithm {
	d.acquire()
	return &CreatePermutationAlgorithm{dispatcher: d}
}

// Permute returns an Algorithm bound to the permute operation. If
// candidate is non-nil it is validated first via a chained
// ValidatePermutation sub-algorithm; otherwise the cached
// permutation_input_texture is reused (and must be Written).
func (d *Dispatcher) Permute(candidate *CandidatePermutation, image LosslessImage) Algorithm {
	d.acquire()
	return &PermuteAlgorithm{
		dispatcher: d,
		validator:  newChainedValidator(d, candidate),
		image:      image,
	}
}

// Swap returns an Algorithm bound to the swap operation for a single
// SwapPass at the given acceptance threshold. goal is the displacement
// goal to anneal toward; if candidate is non-nil it is validated first.
func (d *Dispatcher) Swap(candidate *CandidatePermutation, goal DisplacementGoal, pass SwapPass, threshold float64) Algorithm {
	d.acquire()
	return &SwapAlgorithm{
		dispatcher: d,
		validator:  newChainedValidator(d, candidate),
		goal:       goal,
		pass:       pass,
		threshold:  threshold,
	}
}

// CreateDisplacementGoal returns an Algorithm bound to the
// create_displacement_goal operation. cfg.Body == "" selects the
// identity-goal default; a non-empty cfg supplies a caller-assembled
// shader (spec.md §4.6).
func (d *Dispatcher) CreateDisplacementGoal(candidate *CandidatePermutation, goal *DisplacementGoal, image *LosslessImage, cfg shadertext.Config) Algorithm {
	d.acquire()
	return &CreateDisplacementGoalAlgorithm{
		dispatcher: d,
		validator:  newChainedValidator(d, candidate),
		goal:       goal,
		image:      image,
		cfg:        cfg,
	}
}

// ValidatePermutation returns an Algorithm bound to validate_permutation
// directly, for a caller that only wants the CPU-side check without
// chaining it into a GPU operation.
func (d *Dispatcher) ValidatePermutation(candidate CandidatePermutation) Algorithm {
	d.acquire()
	return newValidatePermutationAlgorithm(d, candidate)
}

package binding

// The binding indices below are part of the external shader contract
// (spec.md §4.4): every operation's compute kernel must bind its
// resources at exactly these group-0 indices for FromExtent/FromExtentAndStride
// dispatches to line up with what the shader expects.

// CreatePermutation binding indices.
const (
	CreatePermutationOutputIndex = 0
)

// Permute binding indices.
const (
	PermuteInputPermutationIndex = 0
	PermuteInputImageIndex       = 1
	PermuteOutputImageIndex      = 2
)

// Swap binding indices.
const (
	SwapParametersIndex        = 0
	SwapDisplacementGoalIndex  = 1
	SwapInputPermutationIndex  = 2
	SwapOutputPermutationIndex = 3
	SwapCountOutputIndex       = 4
)

// CountSwap binding indices.
const (
	CountSwapParametersIndex = 0
	CountSwapInputIndex      = 1
	CountSwapOutputIndex     = 2
)

// CreateDisplacementGoal binding indices.
const (
	CreateDisplacementGoalInputGoalIndex        = 0
	CreateDisplacementGoalInputPermutationIndex = 1
	CreateDisplacementGoalInputImageIndex       = 2
	CreateDisplacementGoalOutputIndex           = 3
)

// CountSwapWorkgroupWidth is the fixed reduction width count_swap always
// dispatches with: a single 256-wide workgroup folding the four per-pass
// partial sums (spec.md §4.4, §9's two-level reduction note).
const CountSwapWorkgroupWidth = 256

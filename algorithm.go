package imageanneal

// OutputStatus is the result of one call to Algorithm.Step: what kind of
// output (if any) became available, and whether the algorithm reached a
// terminal state (spec.md §4.7).
type OutputStatus int

const (
	// NoNewOutput means the step made progress but produced nothing new
	// to read yet.
	NoNewOutput OutputStatus = iota
	// NewPartialOutput means PartialOutput now has something to drain.
	NewPartialOutput
	// NewFullOutput means FullOutput now has something to drain.
	NewFullOutput
	// NewPartialAndFullOutput means both outputs now have something to drain.
	NewPartialAndFullOutput
	// FinalPartialOutput is a terminal status: PartialOutput has a final
	// value to drain and no further steps will produce output.
	FinalPartialOutput
	// FinalFullOutput is a terminal status: FullOutput has a final value
	// to drain and no further steps will produce output.
	FinalFullOutput
	// FinalPartialAndFullOutput is a terminal status: both outputs have a
	// final value to drain.
	FinalPartialAndFullOutput
)

func (s OutputStatus) String() string {
	switch s {
	case NoNewOutput:
		return "NoNewOutput"
	case NewPartialOutput:
		return "NewPartialOutput"
	case NewFullOutput:
		return "NewFullOutput"
	case NewPartialAndFullOutput:
		return "NewPartialAndFullOutput"
	case FinalPartialOutput:
		return "FinalPartialOutput"
	case FinalFullOutput:
		return "FinalFullOutput"
	case FinalPartialAndFullOutput:
		return "FinalPartialAndFullOutput"
	default:
		return "unknown"
	}
}

// Terminal reports whether this status ends the algorithm's run: no
// further Step call will succeed once a terminal status is returned.
func (s OutputStatus) Terminal() bool {
	switch s {
	case FinalPartialOutput, FinalFullOutput, FinalPartialAndFullOutput:
		return true
	default:
		return false
	}
}

// algorithmState is the three-way completion status every Algorithm
// implementation tracks internally (spec.md §4.7's Pending/Finished/Failed).
type algorithmState int

const (
	statePending algorithmState = iota
	stateFinished
	stateFailed
)

// completion is embedded by every concrete Algorithm to implement the
// AlreadyFinished/AlreadyFailed guard uniformly, mirroring the teacher's
// released-bool discipline applied to a three-state machine instead of
// a boolean.
type completion struct {
	state algorithmState
}

// guard returns ErrAlreadyFinished/ErrAlreadyFailed if Step should not
// be allowed to run again, nil otherwise.
func (c *completion) guard() error {
	switch c.state {
	case stateFinished:
		return ErrAlreadyFinished
	case stateFailed:
		return ErrAlreadyFailed
	default:
		return nil
	}
}

// finish transitions to Finished and returns the given terminal status.
func (c *completion) finish(status OutputStatus) OutputStatus {
	c.state = stateFinished
	return status
}

// fail transitions to Failed and returns the error unchanged, the
// pattern every concrete Step uses so a kind 2-5 error both surfaces to
// the caller and poisons further Step calls (spec.md §7's propagation rule).
func (c *completion) fail(err error) error {
	c.state = stateFailed
	return err
}

// checkDimensions enforces spec.md §4.3's assert_same_dimensions
// invariant at the Go API boundary: every caller-supplied vector field
// or image must match the Dispatcher's fixed ImageDimensions before it
// reaches a row-padding operation that assumes it.
func checkDimensions(want, got ImageDimensions) error {
	if want != got {
		return &DimensionsMismatchError{Expected: want, Actual: got}
	}
	return nil
}

// Algorithm is the cooperative step machine a Dispatcher method returns:
// bound to one operation, it borrows the Dispatcher's GPU resources by
// move and returns them on completion (spec.md §4.1, §4.7).
type Algorithm interface {
	// Step performs exactly one logical step and reports what became
	// available. Returns ErrAlreadyFinished or ErrAlreadyFailed if called
	// again after a terminal status or a failed step.
	Step() (OutputStatus, error)

	// ReturnToDispatcher hands the borrowed Dispatcher back. Valid only
	// after Step has returned a terminal status or an error.
	ReturnToDispatcher() *Dispatcher
}

// chainedValidator is embedded by Permute, Swap, and CreateDisplacementGoal
// algorithms to prepend an internal ValidatePermutation sub-algorithm
// whenever the caller supplied a CandidatePermutation instead of relying
// on the cached permutation_input_texture (spec.md §4.7's "Chained
// validator").
type chainedValidator struct {
	sub    *ValidatePermutationAlgorithm
	result *ValidatedPermutation
}

// newChainedValidator returns nil if no candidate was supplied: the
// parent algorithm then proceeds straight to its own work, reusing
// whatever is already Written.
func newChainedValidator(d *Dispatcher, candidate *CandidatePermutation) *chainedValidator {
	if candidate == nil {
		return nil
	}
	return &chainedValidator{sub: newValidatePermutationAlgorithm(d, *candidate)}
}

// step advances the embedded sub-algorithm. Returns (done=true, err) once
// the sub-algorithm reaches FinalFullOutput (success, result populated)
// or fails (err non-nil, propagated to the parent's own Failed state).
func (c *chainedValidator) step() (done bool, err error) {
	status, err := c.sub.Step()
	if err != nil {
		return true, err
	}
	if status == FinalFullOutput {
		out := c.sub.FullOutput()
		c.result = &out
		return true, nil
	}
	return false, nil
}

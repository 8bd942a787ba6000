package imageanneal

// ValidatePermutationAlgorithm is the single-step CPU-only algorithm
// underlying validate_permutation directly, and the sub-algorithm
// chainedValidator prepends onto permute/swap/create_displacement_goal
// when a CandidatePermutation is supplied (spec.md §4.7).
type ValidatePermutationAlgorithm struct {
	completion
	dispatcher *Dispatcher
	candidate  CandidatePermutation
	result     ValidatedPermutation
	drained    bool
}

func newValidatePermutationAlgorithm(d *Dispatcher, candidate CandidatePermutation) *ValidatePermutationAlgorithm {
	return &ValidatePermutationAlgorithm{dispatcher: d, candidate: candidate}
}

// Step performs the entire validation in one logical step: there is no
// GPU work to suspend across, so the first call always reaches a
// terminal status.
func (a *ValidatePermutationAlgorithm) Step() (OutputStatus, error) {
	if err := a.guard(); err != nil {
		return 0, err
	}
	if err := checkDimensions(a.dispatcher.dims, a.candidate.Field.Dimensions); err != nil {
		return 0, a.fail(err)
	}
	validated, err := Validate(a.candidate)
	if err != nil {
		return 0, a.fail(err)
	}
	a.result = validated
	return a.finish(FinalFullOutput), nil
}

// FullOutput drains the validated permutation. Per spec.md §4.7, yields
// a value only once per terminal reach; callers that already drained it
// get the zero value back.
func (a *ValidatePermutationAlgorithm) FullOutput() ValidatedPermutation {
	if a.drained {
		return ValidatedPermutation{}
	}
	a.drained = true
	return a.result
}

// ReturnToDispatcher hands the borrowed Dispatcher back.
func (a *ValidatePermutationAlgorithm) ReturnToDispatcher() *Dispatcher {
	a.dispatcher.release()
	return a.dispatcher
}

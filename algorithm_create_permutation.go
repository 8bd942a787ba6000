package imageanneal

// CreatePermutationAlgorithm runs create_permutation: a single GPU
// dispatch writing the identity permutation into
// permutation_output_texture, then a readback (spec.md §4.4).
type CreatePermutationAlgorithm struct {
	completion
	dispatcher *Dispatcher
	result     CandidatePermutation
	drained    bool
}

// Step submits the dispatch and reads the result back in one logical
// step, since this module's queue operations already run synchronously
// to completion (device.go's Poll doc comment).
func (a *CreatePermutationAlgorithm) Step() (OutputStatus, error) {
	if err := a.guard(); err != nil {
		return 0, err
	}
	raw, err := a.dispatcher.ops.CreatePermutation()
	if err != nil {
		return 0, a.fail(err)
	}
	field, err := DecodeNativeEndian(a.dispatcher.dims, raw)
	if err != nil {
		return 0, a.fail(err)
	}
	a.result = CandidatePermutation{Field: field}
	return a.finish(FinalFullOutput), nil
}

// FullOutput drains the created permutation, a candidate because
// create_permutation's output is always the identity and therefore
// trivially valid, but the contract still routes it through
// CandidatePermutation so callers treat every algorithm's full_output
// uniformly.
func (a *CreatePermutationAlgorithm) FullOutput() CandidatePermutation {
	if a.drained {
		return CandidatePermutation{}
	}
	a.drained = true
	return a.result
}

func (a *CreatePermutationAlgorithm) ReturnToDispatcher() *Dispatcher {
	a.dispatcher.release()
	return a.dispatcher
}

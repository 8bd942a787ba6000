package imageanneal

// PermuteAlgorithm runs permute: applies a permutation (freshly validated
// or the cached one) to a lossless image (spec.md §4.4).
type PermuteAlgorithm struct {
	completion
	dispatcher *Dispatcher
	validator  *chainedValidator
	image      LosslessImage
	result     LosslessImage
	drained    bool
}

// Step advances the chained validator first, if one is present, then
// performs the permute dispatch once validation succeeds.
func (a *PermuteAlgorithm) Step() (OutputStatus, error) {
	if err := a.guard(); err != nil {
		return 0, err
	}
	if err := checkDimensions(a.dispatcher.dims, a.image.Dimensions); err != nil {
		return 0, a.fail(err)
	}

	if a.validator != nil {
		done, err := a.validator.step()
		if err != nil {
			return 0, a.fail(err)
		}
		if !done {
			return NoNewOutput, nil
		}
	}

	var permutationBytes []byte
	if a.validator != nil {
		permutationBytes = a.validator.result.Field().EncodeNativeEndian()
	}

	out, err := a.dispatcher.ops.Permute(permutationBytes, a.image.Pixels)
	if err != nil {
		return 0, a.fail(err)
	}
	a.result = LosslessImage{Dimensions: a.image.Dimensions, Format: a.image.Format, Pixels: out}
	return a.finish(FinalFullOutput), nil
}

// FullOutput drains the permuted image.
func (a *PermuteAlgorithm) FullOutput() LosslessImage {
	if a.drained {
		return LosslessImage{}
	}
	a.drained = true
	return a.result
}

func (a *PermuteAlgorithm) ReturnToDispatcher() *Dispatcher {
	a.dispatcher.release()
	return a.dispatcher
}

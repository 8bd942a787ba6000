package imageanneal

import (
	"encoding/binary"
	"math"
)

// SwapAlgorithm runs one swap pass: proposes local swaps along pass's
// geometry, accepting or rejecting each by the φ(d) cost rule, and
// folds the per-pass accepted-swap counts (spec.md §4.4, §4.6).
type SwapAlgorithm struct {
	completion
	dispatcher *Dispatcher
	validator  *chainedValidator
	goal       DisplacementGoal
	pass       SwapPass
	threshold  float64
	result     CandidatePermutation
	counts     [4]int64
	drained    bool
}

// Step advances the chained validator first, if one is present, then
// performs the swap dispatch and count_swap reduction once validation
// succeeds.
func (a *SwapAlgorithm) Step() (OutputStatus, error) {
	if err := a.guard(); err != nil {
		return 0, err
	}
	if err := checkDimensions(a.dispatcher.dims, a.goal.Field.Dimensions); err != nil {
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

	sx, sy := a.pass.Stride()
	out, err := a.dispatcher.ops.Swap(permutationBytes, a.goal.Field.EncodeNativeEndian(), a.encodeParameters(), uint32(sx), uint32(sy))
	if err != nil {
		return 0, a.fail(err)
	}

	field, err := DecodeNativeEndian(a.dispatcher.dims, out.Permutation)
	if err != nil {
		return 0, a.fail(err)
	}
	a.result = CandidatePermutation{Field: field}

	a.dispatcher.swapPartials = append(a.dispatcher.swapPartials, out.Partial)
	combined := CombineCountSwapPartials(a.dispatcher.swapPartials)
	for i, v := range combined {
		a.counts[i] = int64(v)
	}
	return a.finish(FinalFullOutput), nil
}

// encodeParameters packs the pass identity and threshold into the
// uniform-role bytes the swap kernel's own binding contract defines the
// layout of; this manager only needs its length, not its meaning.
func (a *SwapAlgorithm) encodeParameters() []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(a.pass))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(a.threshold)))
	return buf
}

// FullOutput drains the resulting candidate permutation. The caller is
// expected to re-validate it (or trust P4: swap preserves the
// ValidatedPermutation invariant whenever its input already satisfied
// it) before handing it to the next operation.
func (a *SwapAlgorithm) FullOutput() CandidatePermutation {
	if a.drained {
		return CandidatePermutation{}
	}
	a.drained = true
	return a.result
}

// Counts returns the four per-pass accepted-swap totals, one slot per
// SwapPass, summed by CombineCountSwapPartials over every Swap this
// Dispatcher has run so far, this one included.
func (a *SwapAlgorithm) Counts() [4]int64 {
	return a.counts
}

func (a *SwapAlgorithm) ReturnToDispatcher() *Dispatcher {
	a.dispatcher.release()
	return a.dispatcher
}

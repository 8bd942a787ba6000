package imageanneal

// CandidatePermutation is a vector field that has not yet been proven to
// be a valid permutation. Only Validate (or an operation that chains the
// validator internally) can turn one into a ValidatedPermutation.
type CandidatePermutation struct {
	Field VectorField
}

// ValidatedPermutation is a vector field proven to satisfy both
// invariants in spec.md §3: every mapped destination is in bounds, and the
// mapping (x,y) ↦ (x+Δx, y+Δy) is a bijection on the image's pixels. The
// only way to construct one is through Validate.
type ValidatedPermutation struct {
	field VectorField
}

// Field returns the underlying, now-trusted vector field.
func (p ValidatedPermutation) Field() VectorField { return p.field }

// IdentityPermutation returns the trivially-valid identity permutation.
func IdentityPermutation(dims ImageDimensions) ValidatedPermutation {
	return ValidatedPermutation{field: NewIdentityVectorField(dims)}
}

// Validate walks every pixel of a candidate permutation in row-major,
// top-to-bottom, left-to-right order and proves the in-bounds and
// bijection invariants, failing with a structured error describing the
// first witness found (spec.md §4.6, §8 S3/S4).
func Validate(candidate CandidatePermutation) (ValidatedPermutation, error) {
	field := candidate.Field
	dims := field.Dimensions
	seenFrom := make([]int, dims.Count())
	for i := range seenFrom {
		seenFrom[i] = -1
	}

	for y := 0; y < dims.Height(); y++ {
		for x := 0; x < dims.Width(); x++ {
			idx, _ := dims.LinearIndex(x, y)
			entry := field.Entries[idx]
			targetX := x + int(entry.DeltaX)
			targetY := y + int(entry.DeltaY)
			if !dims.InBounds(targetX, targetY) {
				return ValidatedPermutation{}, &InvalidPermutationError{
					Kind:       OutOfBounds,
					X:          x,
					Y:          y,
					DeltaX:     int(entry.DeltaX),
					DeltaY:     int(entry.DeltaY),
					Dimensions: dims,
				}
			}
			targetIdx, _ := dims.LinearIndex(targetX, targetY)
			if prior := seenFrom[targetIdx]; prior != -1 {
				priorX, priorY := prior%dims.Width(), prior/dims.Width()
				priorEntry := field.Entries[prior]
				return ValidatedPermutation{}, &InvalidPermutationError{
					Kind:          DuplicateMapping,
					FirstX:        priorX,
					FirstY:        priorY,
					FirstDeltaX:   int(priorEntry.DeltaX),
					FirstDeltaY:   int(priorEntry.DeltaY),
					SecondX:       x,
					SecondY:       y,
					SecondDeltaX:  int(entry.DeltaX),
					SecondDeltaY:  int(entry.DeltaY),
					TargetX:       targetX,
					TargetY:       targetY,
				}
			}
			seenFrom[targetIdx] = idx
		}
	}

	return ValidatedPermutation{field: field}, nil
}

// Permute applies a forward permutation to a pixel buffer: output(x,y) =
// input(x+Δx, y+Δy). src and dst must share the permutation's dimensions
// and have the same number of channels per pixel; the permutation is
// trusted, not re-validated.
func Permute(p ValidatedPermutation, channelsPerPixel int, src []byte) []byte {
	dims := p.field.Dimensions
	dst := make([]byte, len(src))
	for y := 0; y < dims.Height(); y++ {
		for x := 0; x < dims.Width(); x++ {
			idx, _ := dims.LinearIndex(x, y)
			entry := p.field.Entries[idx]
			srcIdx, _ := dims.LinearIndex(x+int(entry.DeltaX), y+int(entry.DeltaY))
			copy(dst[idx*channelsPerPixel:(idx+1)*channelsPerPixel],
				src[srcIdx*channelsPerPixel:(srcIdx+1)*channelsPerPixel])
		}
	}
	return dst
}

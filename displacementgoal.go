package imageanneal

// DisplacementGoal is a per-pixel desired displacement field, like
// VectorField but without the in-bounds/bijection constraints a
// ValidatedPermutation carries: any entry, including one that points out of
// bounds or duplicates another pixel's target, is acceptable (spec.md §3).
type DisplacementGoal struct {
	Field VectorField
}

// NewIdentityDisplacementGoal returns a goal whose every entry is the zero
// displacement.
func NewIdentityDisplacementGoal(dims ImageDimensions) DisplacementGoal {
	return DisplacementGoal{Field: NewIdentityVectorField(dims)}
}

// FromCandidatePermutation validates the candidate, then inverts it: this
// is the supported way to seed a displacement goal from a hand-authored or
// externally produced permutation.
func FromCandidatePermutation(candidate CandidatePermutation) (DisplacementGoal, error) {
	validated, err := Validate(candidate)
	if err != nil {
		return DisplacementGoal{}, err
	}
	return FromValidatedPermutation(validated), nil
}

// FromValidatedPermutation inverts a permutation into a displacement goal:
// for every pixel (x, y) with displacement (Δx, Δy), the inverse goal's
// entry at (x+Δx, y+Δy) is (-Δx, -Δy). Because a ValidatedPermutation is a
// bijection, every destination pixel receives exactly one entry.
func FromValidatedPermutation(permutation ValidatedPermutation) DisplacementGoal {
	field := permutation.Field()
	dims := field.Dimensions
	inverse := NewIdentityVectorField(dims)
	for y := 0; y < dims.Height(); y++ {
		for x := 0; x < dims.Width(); x++ {
			idx, _ := dims.LinearIndex(x, y)
			entry := field.Entries[idx]
			targetIdx, _ := dims.LinearIndex(x+int(entry.DeltaX), y+int(entry.DeltaY))
			inverse.Entries[targetIdx] = VectorFieldEntry{DeltaX: -entry.DeltaX, DeltaY: -entry.DeltaY}
		}
	}
	return DisplacementGoal{Field: inverse}
}

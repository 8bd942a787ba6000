package imageanneal

import "testing"

// TestInvertIdentityIsIdentity is spec.md §8 P2 (first half).
func TestInvertIdentityIsIdentity(t *testing.T) {
	dims := mustDims(t, 4, 4)
	goal := FromValidatedPermutation(IdentityPermutation(dims))
	if !goal.Field.IsIdentity() {
		t.Error("inverse of identity permutation is not identity")
	}
}

// TestInvertInvertRecoversOriginal is spec.md §8 P2 (second half): inverting
// a permutation twice (by round-tripping the inverse field back through
// Validate) recovers the original field.
func TestInvertInvertRecoversOriginal(t *testing.T) {
	dims := mustDims(t, 2, 1)
	original := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 1, DeltaY: 0},
		{DeltaX: -1, DeltaY: 0},
	}}
	validated, err := Validate(CandidatePermutation{Field: original})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	goal := FromValidatedPermutation(validated)
	reValidated, err := Validate(CandidatePermutation{Field: goal.Field})
	if err != nil {
		t.Fatalf("Validate(inverse): %v", err)
	}
	doubleInverse := FromValidatedPermutation(reValidated)

	for i := range original.Entries {
		if doubleInverse.Field.Entries[i] != original.Entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, doubleInverse.Field.Entries[i], original.Entries[i])
		}
	}
}

func TestFromCandidatePermutationRejectsInvalid(t *testing.T) {
	dims := mustDims(t, 1, 3)
	field := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 0, DeltaY: 1},
		{DeltaX: 0, DeltaY: 1},
		{DeltaX: 0, DeltaY: -1},
	}}
	if _, err := FromCandidatePermutation(CandidatePermutation{Field: field}); err == nil {
		t.Fatal("expected validation error to propagate")
	}
}

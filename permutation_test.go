package imageanneal

import (
	"strings"
	"testing"
)

func mustDims(t *testing.T, w, h int) ImageDimensions {
	t.Helper()
	dims, err := NewImageDimensions(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return dims
}

// TestValidateIdentity is spec.md §8 S1: an identity field validates OK.
func TestValidateIdentity(t *testing.T) {
	dims := mustDims(t, 3, 4)
	field := NewIdentityVectorField(dims)
	validated, err := Validate(CandidatePermutation{Field: field})
	if err != nil {
		t.Fatalf("Validate(identity): %v", err)
	}
	if !validated.Field().IsIdentity() {
		t.Error("validated identity is no longer identity")
	}
}

// TestValidateDuplicateMapping is spec.md §8 S3.
func TestValidateDuplicateMapping(t *testing.T) {
	dims := mustDims(t, 1, 3)
	field := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 0, DeltaY: 1},
		{DeltaX: 0, DeltaY: 1},
		{DeltaX: 0, DeltaY: -1},
	}}
	_, err := Validate(CandidatePermutation{Field: field})
	if err == nil {
		t.Fatal("expected duplicate-mapping error")
	}
	want := "both map to location (x, y) = (0, 1)"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err.Error(), want)
	}
}

// TestValidateOutOfBounds is spec.md §8 S4.
func TestValidateOutOfBounds(t *testing.T) {
	dims := mustDims(t, 1, 3)
	field := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 0, DeltaY: -1},
		{DeltaX: 0, DeltaY: 1},
		{DeltaX: 0, DeltaY: -1},
	}}
	_, err := Validate(CandidatePermutation{Field: field})
	if err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	want := "out of bounds mapping (x, y, delta_x, delta_y) = (0, 0, 0, -1)"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err.Error(), want)
	}
}

// TestPermuteIdentityIsNoOp is spec.md §8 P3.
func TestPermuteIdentityIsNoOp(t *testing.T) {
	dims := mustDims(t, 3, 5)
	identity := IdentityPermutation(dims)
	src := make([]byte, dims.Count()*4)
	for i := range src {
		src[i] = byte(i)
	}
	dst := Permute(identity, 4, src)
	for i := range src {
		if src[i] != dst[i] {
			t.Fatalf("byte %d: got %d, want %d", i, dst[i], src[i])
		}
	}
}

// TestValidateRejectsNonBijectiveEvenWhenInBounds covers P1: every pixel
// must be hit exactly once, not merely land in bounds.
func TestValidateRejectsNonBijectiveEvenWhenInBounds(t *testing.T) {
	dims := mustDims(t, 2, 1)
	field := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 1, DeltaY: 0},
		{DeltaX: -1, DeltaY: 0},
	}}
	if _, err := Validate(CandidatePermutation{Field: field}); err != nil {
		t.Fatalf("expected valid bijective swap, got %v", err)
	}

	field2 := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 1, DeltaY: 0},
		{DeltaX: 0, DeltaY: 0},
	}}
	if _, err := Validate(CandidatePermutation{Field: field2}); err == nil {
		t.Fatal("expected duplicate-mapping error for non-bijective field")
	}
}

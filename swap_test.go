package imageanneal

import "testing"

func TestSwapPassPairCountExcludesBoundary(t *testing.T) {
	dims := mustDims(t, 5, 3)
	if got, want := PassHorizontal.PairCount(dims), 2*3; got != want {
		t.Errorf("Horizontal.PairCount = %d, want %d", got, want)
	}
	if got, want := PassOffsetHorizontal.PairCount(dims), 2*3; got != want {
		t.Errorf("OffsetHorizontal.PairCount = %d, want %d", got, want)
	}
	if got, want := PassVertical.PairCount(dims), 5*1; got != want {
		t.Errorf("Vertical.PairCount = %d, want %d", got, want)
	}
	if got, want := PassOffsetVertical.PairCount(dims), 5*1; got != want {
		t.Errorf("OffsetVertical.PairCount = %d, want %d", got, want)
	}
}

func TestSwapPassEndpoints(t *testing.T) {
	dims := mustDims(t, 4, 2)
	ax, ay, bx, by, ok := PassHorizontal.Endpoints(dims, 0)
	if !ok || ax != 0 || ay != 0 || bx != 1 || by != 0 {
		t.Fatalf("Horizontal pair 0 = (%d,%d)-(%d,%d) ok=%v, want (0,0)-(1,0)", ax, ay, bx, by, ok)
	}
	ax, ay, bx, by, ok = PassHorizontal.Endpoints(dims, 2)
	if !ok || ax != 0 || ay != 1 || bx != 1 || by != 1 {
		t.Fatalf("Horizontal pair 2 = (%d,%d)-(%d,%d) ok=%v, want (0,1)-(1,1)", ax, ay, bx, by, ok)
	}
	if _, _, _, _, ok := PassHorizontal.Endpoints(dims, 99); ok {
		t.Error("out-of-range pair index should report ok=false")
	}
}

// TestSwapIdentityWithIdentityGoalIsNoOp is spec.md §8 S6 / §7 P6.
func TestSwapIdentityWithIdentityGoalIsNoOp(t *testing.T) {
	dims := mustDims(t, 2, 2)
	perm := IdentityPermutation(dims).Field()
	goal := NewIdentityDisplacementGoal(dims).Field

	out, accepted := ApplySwapPass(perm, goal, PassHorizontal, 0)
	if accepted != 0 {
		t.Errorf("accepted = %d, want 0", accepted)
	}
	for i := range perm.Entries {
		if out.Entries[i] != perm.Entries[i] {
			t.Errorf("entry %d changed: got %+v, want %+v", i, out.Entries[i], perm.Entries[i])
		}
	}
}

// TestSwapRecoversGoalDerivedFromItself is spec.md §8 S5: swapping a
// non-identity permutation against the goal derived by inverting its own
// single-pass swap reproduces that same swap, accepting every pair.
func TestSwapRecoversGoalDerivedFromItself(t *testing.T) {
	dims := mustDims(t, 2, 3)
	perm := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 1, DeltaY: 0}, {DeltaX: -1, DeltaY: 0},
		{DeltaX: 1, DeltaY: 0}, {DeltaX: -1, DeltaY: 0},
		{DeltaX: 1, DeltaY: 0}, {DeltaX: -1, DeltaY: 0},
	}}
	validated, err := Validate(CandidatePermutation{Field: perm})
	if err != nil {
		t.Fatalf("input permutation is invalid: %v", err)
	}

	swapped, accepted := ApplySwapPass(perm, NewIdentityVectorField(dims), PassHorizontal, 1)
	if accepted == 0 {
		t.Fatal("expected the identity goal to accept at least one swap for this non-identity permutation")
	}
	swappedValidated, err := Validate(CandidatePermutation{Field: swapped})
	if err != nil {
		t.Fatalf("swap output is not a valid permutation: %v", err)
	}
	goal := FromValidatedPermutation(swappedValidated)

	_ = validated
	out, accepted2 := ApplySwapPass(perm, goal.Field, PassHorizontal, 1)
	wantPairs := PassHorizontal.PairCount(dims)
	if accepted2 != wantPairs {
		t.Errorf("accepted2 = %d, want %d (pair count of row)", accepted2, wantPairs)
	}
	for i := range swapped.Entries {
		if out.Entries[i] != swapped.Entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, out.Entries[i], swapped.Entries[i])
		}
	}
}

// TestSwapOutputStaysValidatedPermutation is spec.md §7 P4.
func TestSwapOutputStaysValidatedPermutation(t *testing.T) {
	dims := mustDims(t, 2, 1)
	perm := VectorField{Dimensions: dims, Entries: []VectorFieldEntry{
		{DeltaX: 1, DeltaY: 0}, {DeltaX: -1, DeltaY: 0},
	}}
	goal := NewIdentityVectorField(dims)
	out, _ := ApplySwapPass(perm, goal, PassHorizontal, 1)
	if _, err := Validate(CandidatePermutation{Field: out}); err != nil {
		t.Errorf("swap output failed validation: %v", err)
	}
}

func TestCombineCountSwapPartials(t *testing.T) {
	partials := [][4]float64{
		{1, 0, 2, 0},
		{3, 1, 0, 0},
	}
	got := CombineCountSwapPartials(partials)
	want := [4]int{4, 1, 2, 0}
	if got != want {
		t.Errorf("CombineCountSwapPartials = %v, want %v", got, want)
	}
}

func TestPhiMonotonic(t *testing.T) {
	if !(phi(0) < phi(1) && phi(1) < phi(2)) {
		t.Errorf("phi is not monotonically increasing: phi(0)=%v phi(1)=%v phi(2)=%v", phi(0), phi(1), phi(2))
	}
	if phi(0) != 0 {
		t.Errorf("phi(0) = %v, want 0", phi(0))
	}
}

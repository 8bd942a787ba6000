package imageanneal_test

import (
	"testing"

	"github.com/gogpu/imageanneal"
)

// TestCreatePermutationIdentity exercises spec.md §8 scenario S1: with
// no inputs, create_permutation must produce the identity vector field,
// which trivially validates.
func TestCreatePermutationIdentity(t *testing.T) {
	dims, err := imageanneal.NewImageDimensions(3, 4)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	d := newTestDispatcher(t, dims, 4)

	alg := d.CreatePermutation()
	status := runToTerminal(t, alg)
	if status != imageanneal.FinalFullOutput {
		t.Fatalf("status = %v, want FinalFullOutput", status)
	}

	create := alg.(*imageanneal.CreatePermutationAlgorithm)
	out := create.FullOutput()
	if out.Field.Dimensions != dims {
		t.Fatalf("dimensions = %s, want %s", out.Field.Dimensions, dims)
	}
	if !out.Field.IsIdentity() {
		t.Error("create_permutation output is not the identity vector field")
	}
	if _, err := imageanneal.Validate(out); err != nil {
		t.Errorf("identity permutation failed validation: %v", err)
	}

	returned := alg.ReturnToDispatcher()
	if returned != d {
		t.Error("ReturnToDispatcher did not return the same Dispatcher")
	}
}

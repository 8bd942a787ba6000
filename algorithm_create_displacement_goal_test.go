package imageanneal_test

import (
	"testing"

	"github.com/gogpu/imageanneal"
	"github.com/gogpu/imageanneal/internal/shadertext"
)

// TestCreateDisplacementGoalRejectsMismatchedGoal exercises §4.3's
// assert_same_dimensions invariant on the optional goal input.
func TestCreateDisplacementGoalRejectsMismatchedGoal(t *testing.T) {
	dims, err := imageanneal.NewImageDimensions(3, 3)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	d := newTestDispatcher(t, dims, 4)

	wrongDims, err := imageanneal.NewImageDimensions(3, 4)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	goal := &imageanneal.DisplacementGoal{Field: imageanneal.NewIdentityVectorField(wrongDims)}

	alg := d.CreateDisplacementGoal(nil, goal, nil, shadertext.Config{})
	if _, err := alg.Step(); err == nil {
		t.Fatal("expected DimensionsMismatchError, got nil")
	} else if _, ok := err.(*imageanneal.DimensionsMismatchError); !ok {
		t.Fatalf("Step error = %v, want *DimensionsMismatchError", err)
	}
	alg.ReturnToDispatcher()
}

// TestCreateDisplacementGoalRejectsMismatchedImage exercises the same
// invariant on the optional image input.
func TestCreateDisplacementGoalRejectsMismatchedImage(t *testing.T) {
	dims, err := imageanneal.NewImageDimensions(3, 3)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	d := newTestDispatcher(t, dims, 4)

	wrongDims, err := imageanneal.NewImageDimensions(4, 4)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	image := imageanneal.NewLosslessImage(wrongDims, imageanneal.FormatRgba8)

	alg := d.CreateDisplacementGoal(nil, nil, &image, shadertext.Config{})
	if _, err := alg.Step(); err == nil {
		t.Fatal("expected DimensionsMismatchError, got nil")
	} else if _, ok := err.(*imageanneal.DimensionsMismatchError); !ok {
		t.Fatalf("Step error = %v, want *DimensionsMismatchError", err)
	}
	alg.ReturnToDispatcher()
}

// TestCreateDisplacementGoalDefaultReachesTerminal drives the default
// (no cfg body; cached identity-goal pipeline) path to completion with
// no goal/permutation/image inputs at all, mirroring how a fresh
// Dispatcher would seed its first displacement goal.
func TestCreateDisplacementGoalDefaultReachesTerminal(t *testing.T) {
	dims, err := imageanneal.NewImageDimensions(3, 3)
	if err != nil {
		t.Fatalf("NewImageDimensions: %v", err)
	}
	d := newTestDispatcher(t, dims, 4)

	alg := d.CreateDisplacementGoal(nil, nil, nil, shadertext.Config{})
	status := runToTerminal(t, alg)
	if status != imageanneal.FinalFullOutput {
		t.Fatalf("status = %v, want FinalFullOutput", status)
	}

	goalAlg := alg.(*imageanneal.CreateDisplacementGoalAlgorithm)
	out := goalAlg.FullOutput()
	if out.Field.Dimensions != dims {
		t.Errorf("output dimensions = %s, want %s", out.Field.Dimensions, dims)
	}
	alg.ReturnToDispatcher()
}

package imageanneal

import (
	"errors"
	"fmt"
)

// DeviceRequestError reports that no compatible GPU adapter could be
// acquired. Produced only at Dispatcher/DeviceManager construction.
type DeviceRequestError struct {
	Cause error
}

func (e *DeviceRequestError) Error() string {
	return fmt.Sprintf("error requesting device adapter: %v", e.Cause)
}

func (e *DeviceRequestError) Unwrap() error { return e.Cause }

// DimensionsMismatchError reports that a caller-supplied input's
// dimensions differ from the Dispatcher's fixed ImageDimensions.
type DimensionsMismatchError struct {
	Expected, Actual ImageDimensions
}

func (e *DimensionsMismatchError) Error() string {
	return fmt.Sprintf("image dimensions mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// InvalidPermutationErrorKind distinguishes the two ways a candidate
// vector field can fail permutation validation.
type InvalidPermutationErrorKind int

const (
	// OutOfBounds means some pixel's mapped destination falls outside the image.
	OutOfBounds InvalidPermutationErrorKind = iota
	// DuplicateMapping means two distinct pixels map to the same destination.
	DuplicateMapping
)

// InvalidPermutationError reports the first witness found while validating
// a candidate permutation, per spec.md §4.6's scan order (row-major,
// top-to-bottom, left-to-right).
type InvalidPermutationError struct {
	Kind InvalidPermutationErrorKind

	// Populated when Kind == OutOfBounds.
	X, Y, DeltaX, DeltaY int
	Dimensions           ImageDimensions

	// Populated when Kind == DuplicateMapping: the two source pixels (the
	// lexicographically-first witness, then the one being examined) that
	// both map to TargetX, TargetY.
	FirstX, FirstY, FirstDeltaX, FirstDeltaY     int
	SecondX, SecondY, SecondDeltaX, SecondDeltaY int
	TargetX, TargetY                             int
}

func (e *InvalidPermutationError) Error() string {
	switch e.Kind {
	case OutOfBounds:
		return fmt.Sprintf(
			"out of bounds mapping (x, y, delta_x, delta_y) = (%d, %d, %d, %d) for an image of dimensions %s",
			e.X, e.Y, e.DeltaX, e.DeltaY, e.Dimensions)
	default:
		return fmt.Sprintf(
			"entries (x1,y1,delta_x1,delta_y1) and (x2,y2,delta_x2,delta_y2) = (%d, %d, %d, %d) and (%d, %d, %d, %d) both map to location (x, y) = (%d, %d)",
			e.FirstX, e.FirstY, e.FirstDeltaX, e.FirstDeltaY,
			e.SecondX, e.SecondY, e.SecondDeltaX, e.SecondDeltaY,
			e.TargetX, e.TargetY)
	}
}

// InvalidInputFormatError reports that an image's bit depth or channel
// layout differs from the LosslessImage variant the caller expected.
type InvalidInputFormatError struct {
	Expected, Actual string
}

func (e *InvalidInputFormatError) Error() string {
	return fmt.Sprintf("invalid input image format: expected %s, got %s", e.Expected, e.Actual)
}

// ErrAlreadyFinished is returned by Algorithm.Step when called after the
// algorithm already reached a terminal status.
var ErrAlreadyFinished = errors.New("cannot proceed: algorithm already reached a terminal status")

// ErrAlreadyFailed is returned by Algorithm.Step when called after a
// previous call to Step failed.
var ErrAlreadyFailed = errors.New("cannot proceed because of an error during the previous call to Step")

// ErrDispatcherInUse is raised (as a panic, mirroring wgpu's released-resource
// discipline) when an operation is requested on a Dispatcher that already
// has a live Algorithm outstanding.
var ErrDispatcherInUse = errors.New("dispatcher already has a live algorithm outstanding")

// Package binding holds the fixed bind-group-layout contract (spec.md
// §4.4's Shader-Assembly Interface) and the workgroup grid-dispatch math
// every operation derives its compute dispatch extent from.
package binding

// DefaultWorkgroupSize is the local workgroup shape every per-pixel
// compute kernel in this module declares, matching the fixed external
// contract spec.md §4.4 and §6 describe (16, 16, 1). The count_swap
// reduction uses CountSwapWorkgroupWidth instead.
var DefaultWorkgroupSize = [3]uint32{16, 16, 1}

// GridDimensions is the number of workgroups a dispatch launches along
// each axis.
type GridDimensions struct {
	X, Y, Z uint32
}

// ceilDiv divides and rounds up, the same way the original's
// WorkgroupGridDimensions does with the remainder/quotient pair.
func ceilDiv(n, d uint32) uint32 {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// FromExtent computes the grid dimensions needed to cover an extent with
// DefaultWorkgroupSize-sized workgroups: one thread per texel.
func FromExtent(width, height, depth uint32) GridDimensions {
	return GridDimensions{
		X: ceilDiv(width, DefaultWorkgroupSize[0]),
		Y: ceilDiv(height, DefaultWorkgroupSize[1]),
		Z: ceilDiv(depth, DefaultWorkgroupSize[2]),
	}
}

// FromExtentAndStride computes the grid dimensions for a dispatch that
// launches one thread per *pair* rather than per texel — spec.md §4.6's
// swap passes, whose stride is (2,1) or (1,2) depending on pass — by
// first dividing the extent down by the stride, then applying the usual
// workgroup-sized ceiling division.
func FromExtentAndStride(width, height, depth, xStride, yStride uint32) GridDimensions {
	stridedWidth := ceilDiv(width, xStride)
	stridedHeight := ceilDiv(height, yStride)
	return FromExtent(stridedWidth, stridedHeight, depth)
}

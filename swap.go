package imageanneal

import "math"

// SwapPass names one of the four pairings a swap operation can perform
// over an image (spec.md §4.6).
type SwapPass int

const (
	PassHorizontal SwapPass = iota
	PassVertical
	PassOffsetHorizontal
	PassOffsetVertical
)

func (p SwapPass) String() string {
	switch p {
	case PassHorizontal:
		return "Horizontal"
	case PassVertical:
		return "Vertical"
	case PassOffsetHorizontal:
		return "OffsetHorizontal"
	case PassOffsetVertical:
		return "OffsetVertical"
	default:
		return "unknown"
	}
}

// Displacement returns δ, the vector from a pair's first pixel (A) to its
// second (B).
func (p SwapPass) Displacement() (dx, dy int) {
	switch p {
	case PassHorizontal, PassOffsetHorizontal:
		return 1, 0
	default:
		return 0, 1
	}
}

// Stride returns the dispatch stride spec.md §4.6 assigns each pass.
func (p SwapPass) Stride() (sx, sy int) {
	switch p {
	case PassHorizontal, PassOffsetHorizontal:
		return 2, 1
	default:
		return 1, 2
	}
}

// isOffset reports whether this pass starts its pairing one pixel in from
// the image origin (OffsetHorizontal, OffsetVertical).
func (p SwapPass) isOffset() bool {
	return p == PassOffsetHorizontal || p == PassOffsetVertical
}

// isHorizontalFamily reports whether pairs run along a row (true) or a
// column (false).
func (p SwapPass) isHorizontalFamily() bool {
	return p == PassHorizontal || p == PassOffsetHorizontal
}

// pairsPerLine returns how many complete pairs fit along one line (a row
// for a horizontal-family pass, a column for a vertical-family one) of
// the given length. Boundary pairs — a partial pair at the far edge — are
// excluded, per spec.md §9's resolution of its own open question.
func (p SwapPass) pairsPerLine(length int) int {
	if p.isOffset() {
		if length <= 0 {
			return 0
		}
		return (length - 1) / 2
	}
	if length <= 0 {
		return 0
	}
	return length / 2
}

// lineCount returns the number of lines a pass iterates: one per row for
// a horizontal-family pass, one per column for a vertical-family one.
func (p SwapPass) lineCount(dims ImageDimensions) int {
	if p.isHorizontalFamily() {
		return dims.Height()
	}
	return dims.Width()
}

// PairCount returns the total number of complete pairs a pass considers
// over an image of the given dimensions.
func (p SwapPass) PairCount(dims ImageDimensions) int {
	var lineLength int
	if p.isHorizontalFamily() {
		lineLength = dims.Width()
	} else {
		lineLength = dims.Height()
	}
	return p.pairsPerLine(lineLength) * p.lineCount(dims)
}

// Endpoints maps a pair index in [0, PairCount(dims)) to the (A, B) pixel
// coordinates of that pair, in the same row-major, line-then-pair-within-
// line order a single compute dispatch would enumerate them in.
func (p SwapPass) Endpoints(dims ImageDimensions, pairIndex int) (ax, ay, bx, by int, ok bool) {
	var lineLength int
	if p.isHorizontalFamily() {
		lineLength = dims.Width()
	} else {
		lineLength = dims.Height()
	}
	perLine := p.pairsPerLine(lineLength)
	if perLine == 0 || pairIndex < 0 || pairIndex >= perLine*p.lineCount(dims) {
		return 0, 0, 0, 0, false
	}
	line := pairIndex / perLine
	k := pairIndex % perLine

	first := 2 * k
	if p.isOffset() {
		first++
	}
	dx, dy := p.Displacement()

	if p.isHorizontalFamily() {
		ax, ay = first, line
	} else {
		ax, ay = line, first
	}
	bx, by = ax+dx, ay+dy
	return ax, ay, bx, by, true
}

// phi is the potential-energy function spec.md §4.6 defines for a
// distance d: it is 0 at d=0 and approaches 1 as d grows, so larger
// misses cost more but with diminishing marginal effect.
func phi(d float64) float64 {
	return 1 - 1/(d+1)
}

// dist2D is the Euclidean distance between two integer pixel coordinates.
func dist2D(ax, ay, bx, by int) float64 {
	dx := float64(ax - bx)
	dy := float64(ay - by)
	return math.Sqrt(dx*dx + dy*dy)
}

// goalTarget computes goal_target(P) = (P + p(P)) + goal(P + p(P)) from
// spec.md §4.6: the pixel P's current permutation destination, further
// displaced by the desired-displacement goal recorded at that
// destination.
func goalTarget(perm, goal VectorField, px, py int) (tx, ty int) {
	permEntry, _ := perm.At(px, py)
	qx, qy := px+int(permEntry.DeltaX), py+int(permEntry.DeltaY)
	goalEntry, _ := goal.At(qx, qy)
	return qx + int(goalEntry.DeltaX), qy + int(goalEntry.DeltaY)
}

// SwapDecision is the result of evaluating one candidate pair.
type SwapDecision struct {
	Accept    bool
	DeltaCost float64
}

// EvaluateSwap computes the total change in potential energy from
// exchanging the permutation mappings of A and B, and accepts the swap
// iff that change is strictly less than the caller's threshold, per
// spec.md §4.6's acceptance rule.
func EvaluateSwap(perm, goal VectorField, pass SwapPass, ax, ay, bx, by int, threshold float64) SwapDecision {
	dx, dy := pass.Displacement()

	tax, tay := goalTarget(perm, goal, ax, ay)
	costBeforeA := phi(dist2D(tax, tay, ax, ay))
	costAfterA := phi(dist2D(tax, tay, ax+dx, ay+dy))
	deltaA := costAfterA - costBeforeA

	tbx, tby := goalTarget(perm, goal, bx, by)
	costBeforeB := phi(dist2D(tbx, tby, bx, by))
	costAfterB := phi(dist2D(tbx, tby, bx-dx, by-dy))
	deltaB := costAfterB - costBeforeB

	total := deltaA + deltaB
	return SwapDecision{Accept: total < threshold, DeltaCost: total}
}

// ApplySwapPass runs one full swap pass over perm, returning the new
// permutation vector field and the number of pairs accepted. Rejected
// pairs pass their entries through unchanged; accepted pairs exchange
// their mappings (p'(A) = p(A) - δ, p'(B) = p(B) + δ).
func ApplySwapPass(perm, goal VectorField, pass SwapPass, threshold float64) (VectorField, int) {
	dims := perm.Dimensions
	out := VectorField{Dimensions: dims, Entries: append([]VectorFieldEntry(nil), perm.Entries...)}
	dx, dy := pass.Displacement()

	accepted := 0
	count := pass.PairCount(dims)
	for i := 0; i < count; i++ {
		ax, ay, bx, by, ok := pass.Endpoints(dims, i)
		if !ok {
			continue
		}
		decision := EvaluateSwap(perm, goal, pass, ax, ay, bx, by, threshold)
		if !decision.Accept {
			continue
		}
		accepted++
		aIdx, _ := dims.LinearIndex(ax, ay)
		bIdx, _ := dims.LinearIndex(bx, by)
		aEntry := perm.Entries[aIdx]
		bEntry := perm.Entries[bIdx]
		out.Entries[aIdx] = VectorFieldEntry{DeltaX: aEntry.DeltaX - int16(dx), DeltaY: aEntry.DeltaY - int16(dy)}
		out.Entries[bIdx] = VectorFieldEntry{DeltaX: bEntry.DeltaX + int16(dx), DeltaY: bEntry.DeltaY + int16(dy)}
	}
	return out, accepted
}

// CombineCountSwapPartials finishes the two-level count-swap reduction
// spec.md §9 describes: the GPU side already reduced each workgroup's
// invocations down to one four-element vector (one slot per SwapPass);
// this combines those per-workgroup vectors into one total per pass,
// left to the CPU so the pass dimension is never folded on GPU.
func CombineCountSwapPartials(perWorkgroup [][4]float64) [4]int {
	var totals [4]float64
	for _, wg := range perWorkgroup {
		for i := 0; i < 4; i++ {
			totals[i] += wg[i]
		}
	}
	var out [4]int
	for i := 0; i < 4; i++ {
		out[i] = int(math.Round(totals[i]))
	}
	return out
}

package joint

import (
	"fmt"
	"math"
)

// LengthTolerance is how far the summed width of a variable pattern may
// stray from the side it covers.
const LengthTolerance = 0.001

// SegmentType tells fingers from grooves.
type SegmentType int

const (
	SegmentFinger SegmentType = iota // material kept
	SegmentGroove                    // material cut away
)

func (t SegmentType) String() string {
	switch t {
	case SegmentFinger:
		return "finger"
	case SegmentGroove:
		return "groove"
	default:
		return "unknown"
	}
}

// Segment is one run of finger or groove along a side, measured from the
// side's local zero.
type Segment struct {
	Start float64
	Width float64
	Type  SegmentType
}

// End returns the offset just past the segment.
func (s Segment) End() float64 {
	return s.Start + s.Width
}

// Generate produces the segments of p along a side of length dimension.
func Generate(p Pattern, dimension float64) ([]Segment, error) {
	switch p := p.(type) {
	case Fixed:
		return GenerateFixedSegments(p, dimension)
	case Variable:
		return GenerateVariableSegments(p, dimension)
	case nil:
		return nil, fmt.Errorf("no joint pattern")
	}
	return nil, fmt.Errorf("unsupported joint pattern %T", p)
}

// GenerateFixedSegments tiles dimension with 2*FingerCount-1 alternating
// segments, starting and ending with a finger. Every segment gets the same
// width, dimension/(2*FingerCount-1), whatever FingerWidth says: the
// pattern always covers the side exactly. Use ValidateFixedJoint to surface
// a FingerWidth that disagrees.
//
// CenterKeyed is accepted but produces the same layout.
func GenerateFixedSegments(f Fixed, dimension float64) ([]Segment, error) {
	if f.FingerCount < 1 {
		return nil, &ValidationError{Message: fmt.Sprintf("finger count must be at least 1, got %d", f.FingerCount)}
	}
	if dimension <= 0 || math.IsNaN(dimension) || math.IsInf(dimension, 0) {
		return nil, &ValidationError{Message: fmt.Sprintf("side length must be positive, got %g", dimension)}
	}

	total := 2*f.FingerCount - 1
	width := dimension / float64(total)

	segs := make([]Segment, total)
	for i := range segs {
		typ := SegmentFinger
		if i%2 == 1 {
			typ = SegmentGroove
		}
		segs[i] = Segment{Start: float64(i) * width, Width: width, Type: typ}
	}
	return segs, nil
}

// GenerateVariableSegments lays out Geometry left to right. The segment at
// index i is a finger when (i+Start) is even. The widths must add up to
// dimension within LengthTolerance.
func GenerateVariableSegments(v Variable, dimension float64) ([]Segment, error) {
	total := sum(v.Geometry)
	if math.Abs(total-dimension) > LengthTolerance {
		return nil, &ValidationError{
			Message: fmt.Sprintf("segment widths add up to %.4f but the side is %.4f", total, dimension),
		}
	}

	segs := make([]Segment, len(v.Geometry))
	offset := 0.0
	for i, w := range v.Geometry {
		typ := SegmentFinger
		if (i+v.Start)%2 != 0 {
			typ = SegmentGroove
		}
		segs[i] = Segment{Start: offset, Width: w, Type: typ}
		offset += w
	}
	return segs, nil
}

// DistributeEvenly splits dimension into count equal widths. It returns an
// empty slice when count is less than 1.
func DistributeEvenly(dimension float64, count int) []float64 {
	if count < 1 {
		return []float64{}
	}
	out := make([]float64, count)
	w := dimension / float64(count)
	for i := range out {
		out[i] = w
	}
	return out
}

// MirrorPattern returns pattern followed by its reverse, a palindrome of
// twice the length.
func MirrorPattern(pattern []float64) []float64 {
	n := len(pattern)
	out := make([]float64, 2*n)
	copy(out, pattern)
	for i, w := range pattern {
		out[2*n-1-i] = w
	}
	return out
}

// Grooves filters segs down to its grooves.
func Grooves(segs []Segment) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Type == SegmentGroove {
			out = append(out, s)
		}
	}
	return out
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}

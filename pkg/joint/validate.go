package joint

import (
	"fmt"
	"math"
)

// WidthTolerance is how far a fixed joint's finger width may stray from the
// optimal width before validation fails.
const WidthTolerance = 0.01

// CalculateOptimalFingerWidth returns the width that tiles dimension with
// fingerCount fingers and the grooves between them, rounded to the nearest
// 0.5 (the editor's input step). It returns 0 for a non-positive count or
// dimension.
func CalculateOptimalFingerWidth(fingerCount int, dimension float64) float64 {
	if fingerCount < 1 || dimension <= 0 {
		return 0
	}
	raw := dimension / float64(2*fingerCount-1)
	return math.Round(raw*2) / 2
}

// ValidateFixedJoint checks f against a side of length dimension. A width
// mismatch yields a *ValidationError carrying the optimal width as the
// suggested correction.
func ValidateFixedJoint(f Fixed, dimension float64) error {
	if !(f.FingerWidth > 0) || math.IsInf(f.FingerWidth, 0) {
		return &ValidationError{Message: fmt.Sprintf("finger width must be positive, got %g", f.FingerWidth)}
	}
	if f.FingerCount < 1 {
		return &ValidationError{Message: fmt.Sprintf("finger count must be at least 1, got %d", f.FingerCount)}
	}

	optimal := CalculateOptimalFingerWidth(f.FingerCount, dimension)
	if optimal == 0 {
		return &ValidationError{Message: fmt.Sprintf("side length must be positive, got %g", dimension)}
	}
	if math.Abs(f.FingerWidth-optimal) > WidthTolerance {
		return &ValidationError{
			Message: fmt.Sprintf("finger width %g does not fit %d fingers on %g, use %g",
				f.FingerWidth, f.FingerCount, dimension, optimal),
			SuggestedWidth: &optimal,
		}
	}
	return nil
}

// ValidateVariableJoint checks that geometry is non-empty, strictly
// positive and covers dimension within LengthTolerance.
func ValidateVariableJoint(geometry []float64, dimension float64) error {
	if len(geometry) == 0 {
		return &ValidationError{Message: "geometry must contain at least one width"}
	}
	for i, w := range geometry {
		if !(w > 0) || math.IsInf(w, 0) {
			return &ValidationError{Message: fmt.Sprintf("width %d is %g, must be positive", i+1, w)}
		}
	}
	total := sum(geometry)
	if math.Abs(total-dimension) > LengthTolerance {
		return &ValidationError{
			Message: fmt.Sprintf("widths add up to %.4f, side is %.4f (off by %.4f)",
				total, dimension, total-dimension),
		}
	}
	return nil
}

// Validate checks cfg against a side of length dimension, dispatching on
// its mode. Any *ValidationError returned has Side set.
func Validate(cfg JointConfig, dimension float64) error {
	p, err := cfg.Pattern()
	if err != nil {
		return &ValidationError{Side: cfg.Side, Message: err.Error()}
	}

	switch p := p.(type) {
	case Fixed:
		err = ValidateFixedJoint(p, dimension)
	case Variable:
		err = ValidateVariableJoint(p.Geometry, dimension)
	}
	if ve, ok := err.(*ValidationError); ok {
		ve.Side = cfg.Side
		return ve
	}
	return err
}

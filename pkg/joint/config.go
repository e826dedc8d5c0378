package joint

import "fmt"

// Mode selects how a joint's segments are produced.
type Mode string

const (
	ModeFixed    Mode = "fixed"    // uniform fingers that exactly tile the side
	ModeVariable Mode = "variable" // explicit, possibly uneven segment widths
)

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFixed, ModeVariable:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid joint mode %q, expected fixed or variable", s)
}

// JointConfig is the value record describing the joint on one side of a
// board. Both the fixed and the variable parameters are kept so that a
// config survives switching modes and round-trips through persistence;
// Mode decides which of them is active.
//
// A JointConfig is never mutated after it has been stored on a board.
// The With* methods return modified copies.
type JointConfig struct {
	Side Side
	Mode Mode

	// Fixed mode.
	FingerWidth float64
	FingerCount int
	CenterKeyed bool

	// Variable mode.
	Start    int // 0: first segment is a finger, 1: first segment is a groove
	Geometry []float64

	// GrooveDepth is nil when grooves should cut the full board thickness.
	GrooveDepth *float64
}

// NewFixed returns a fixed-mode config.
func NewFixed(side Side, fingerWidth float64, fingerCount int, centerKeyed bool) JointConfig {
	return JointConfig{
		Side:        side,
		Mode:        ModeFixed,
		FingerWidth: fingerWidth,
		FingerCount: fingerCount,
		CenterKeyed: centerKeyed,
	}
}

// NewVariable returns a variable-mode config. The geometry slice is copied.
func NewVariable(side Side, start int, geometry []float64) JointConfig {
	return JointConfig{
		Side:     side,
		Mode:     ModeVariable,
		Start:    start,
		Geometry: append([]float64(nil), geometry...),
	}
}

// Clone returns a deep copy of c.
func (c JointConfig) Clone() JointConfig {
	out := c
	if c.Geometry != nil {
		out.Geometry = append([]float64(nil), c.Geometry...)
	}
	if c.GrooveDepth != nil {
		d := *c.GrooveDepth
		out.GrooveDepth = &d
	}
	return out
}

// WithGrooveDepth returns a copy of c with the given groove depth.
// Pass nil to cut the full board thickness.
func (c JointConfig) WithGrooveDepth(depth *float64) JointConfig {
	out := c.Clone()
	out.GrooveDepth = nil
	if depth != nil {
		d := *depth
		out.GrooveDepth = &d
	}
	return out
}

// WithFingerWidth returns a copy of c with FingerWidth replaced, typically
// by a suggestion from ValidateFixedJoint.
func (c JointConfig) WithFingerWidth(width float64) JointConfig {
	out := c.Clone()
	out.FingerWidth = width
	return out
}

// WithSide returns a copy of c bound to another side.
func (c JointConfig) WithSide(side Side) JointConfig {
	out := c.Clone()
	out.Side = side
	return out
}

// Pattern returns the active parameters of c as a Pattern.
func (c JointConfig) Pattern() (Pattern, error) {
	switch c.Mode {
	case ModeFixed:
		return Fixed{
			FingerWidth: c.FingerWidth,
			FingerCount: c.FingerCount,
			CenterKeyed: c.CenterKeyed,
		}, nil
	case ModeVariable:
		return Variable{
			Start:    c.Start,
			Geometry: append([]float64(nil), c.Geometry...),
		}, nil
	}
	return nil, fmt.Errorf("joint on %s: unknown mode %q", c.Side, c.Mode)
}

// Equal reports whether two configs hold the same values.
func (c JointConfig) Equal(o JointConfig) bool {
	if c.Side != o.Side || c.Mode != o.Mode ||
		c.FingerWidth != o.FingerWidth || c.FingerCount != o.FingerCount ||
		c.CenterKeyed != o.CenterKeyed || c.Start != o.Start ||
		len(c.Geometry) != len(o.Geometry) {
		return false
	}
	for i := range c.Geometry {
		if c.Geometry[i] != o.Geometry[i] {
			return false
		}
	}
	switch {
	case c.GrooveDepth == nil && o.GrooveDepth == nil:
		return true
	case c.GrooveDepth == nil || o.GrooveDepth == nil:
		return false
	}
	return *c.GrooveDepth == *o.GrooveDepth
}

// Pattern is the closed set of joint patterns: Fixed or Variable.
type Pattern interface {
	pattern() // restricts implementations to this package
}

// Fixed is a pattern of FingerCount fingers separated by grooves of the
// same width.
type Fixed struct {
	FingerWidth float64
	FingerCount int
	CenterKeyed bool // stored and round-tripped; does not move segments
}

func (Fixed) pattern() {}

// Variable is a pattern with explicit segment widths.
type Variable struct {
	Start    int
	Geometry []float64
}

func (Variable) pattern() {}

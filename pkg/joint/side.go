package joint

import "fmt"

// Side identifies one face of a board.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideFront  Side = "front" // reserved, carries no joints
	SideBack   Side = "back"  // reserved, carries no joints
)

// Sides lists every side in canonical order.
var Sides = []Side{SideTop, SideBottom, SideLeft, SideRight, SideFront, SideBack}

// JointSides lists the sides that may carry a joint, in carving order.
var JointSides = []Side{SideTop, SideBottom, SideLeft, SideRight}

// ParseSide converts a side name into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideTop, SideBottom, SideLeft, SideRight, SideFront, SideBack:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q, expected top/bottom/left/right/front/back", s)
}

// CarriesJoints reports whether a joint may be configured on this side.
func (s Side) CarriesJoints() bool {
	switch s {
	case SideTop, SideBottom, SideLeft, SideRight:
		return true
	case SideFront, SideBack:
		return false
	}
	return false
}

// Horizontal reports whether the side runs along the board's width
// (top and bottom) rather than its height.
func (s Side) Horizontal() bool {
	return s == SideTop || s == SideBottom
}

func (s Side) String() string { return string(s) }

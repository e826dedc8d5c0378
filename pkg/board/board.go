// Package board defines the Board value record: a rectangular piece of
// stock with a pose in the scene and at most one joint per side.
package board

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/chazu/boxjoint/pkg/joint"
)

// Vec3 is a 3D vector. Rotations use Euler angles in degrees.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Dimensions are the board's extents in mm. Width runs along local X,
// height along local Y and thickness along local Z.
type Dimensions struct {
	Width     float64
	Height    float64
	Thickness float64
}

// Validate checks that every dimension is positive.
func (d Dimensions) Validate() error {
	if d.Width <= 0 {
		return fmt.Errorf("board width is %.4f, must be positive", d.Width)
	}
	if d.Height <= 0 {
		return fmt.Errorf("board height is %.4f, must be positive", d.Height)
	}
	if d.Thickness <= 0 {
		return fmt.Errorf("board thickness is %.4f, must be positive", d.Thickness)
	}
	return nil
}

// Board is an immutable value record. Every With* method returns a new
// board; the joint map is copied on write so earlier values, such as
// history snapshots, never observe later edits.
type Board struct {
	ID             string
	Dimensions     Dimensions
	Position       Vec3
	Rotation       Vec3
	GrainDirection string
	WoodType       string
	DisplayName    string

	joints map[joint.Side]joint.JointConfig
}

// New returns a board with a fresh random ID and no joints.
func New(dims Dimensions) Board {
	return Board{ID: uuid.NewString(), Dimensions: dims}
}

// NewWithID returns a board with the given ID and no joints.
func NewWithID(id string, dims Dimensions) Board {
	return Board{ID: id, Dimensions: dims}
}

// Name returns the display name, falling back to the ID.
func (b Board) Name() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return b.ID
}

// SideLength returns the length of the edge a joint on side runs along:
// the width for top and bottom, the height for left and right.
func (b Board) SideLength(side joint.Side) (float64, error) {
	switch side {
	case joint.SideTop, joint.SideBottom:
		return b.Dimensions.Width, nil
	case joint.SideLeft, joint.SideRight:
		return b.Dimensions.Height, nil
	case joint.SideFront, joint.SideBack:
		return 0, fmt.Errorf("side %s carries no joints", side)
	}
	return 0, fmt.Errorf("invalid side %q", side)
}

// Joint returns a copy of the joint configured on side.
func (b Board) Joint(side joint.Side) (joint.JointConfig, bool) {
	c, ok := b.joints[side]
	if !ok {
		return joint.JointConfig{}, false
	}
	return c.Clone(), true
}

// Joints returns copies of all configured joints in side order.
func (b Board) Joints() []joint.JointConfig {
	out := make([]joint.JointConfig, 0, len(b.joints))
	for _, side := range joint.Sides {
		if c, ok := b.joints[side]; ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

// JointCount returns the number of configured joints.
func (b Board) JointCount() int {
	return len(b.joints)
}

// WithJoint returns a copy of b with cfg installed on cfg.Side, replacing
// any joint already there.
func (b Board) WithJoint(cfg joint.JointConfig) (Board, error) {
	if _, err := joint.ParseSide(string(cfg.Side)); err != nil {
		return b, err
	}
	if !cfg.Side.CarriesJoints() {
		return b, fmt.Errorf("side %s carries no joints", cfg.Side)
	}
	out := b.copyJoints()
	out.joints[cfg.Side] = cfg.Clone()
	return out, nil
}

// WithoutJoint returns a copy of b with the joint on side removed.
func (b Board) WithoutJoint(side joint.Side) Board {
	if _, ok := b.joints[side]; !ok {
		return b
	}
	out := b.copyJoints()
	delete(out.joints, side)
	return out
}

// WithDimensions returns a copy of b with new dimensions. Joints are kept
// as they are; callers revalidate them against the new side lengths.
func (b Board) WithDimensions(d Dimensions) Board {
	out := b.copyJoints()
	out.Dimensions = d
	return out
}

// WithPose returns a copy of b placed at position with rotation.
func (b Board) WithPose(position, rotation Vec3) Board {
	out := b.copyJoints()
	out.Position = position
	out.Rotation = rotation
	return out
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	return b.copyJoints()
}

// Equal reports whether two boards hold the same values.
func (b Board) Equal(o Board) bool {
	if b.ID != o.ID || b.Dimensions != o.Dimensions ||
		b.Position != o.Position || b.Rotation != o.Rotation ||
		b.GrainDirection != o.GrainDirection || b.WoodType != o.WoodType ||
		b.DisplayName != o.DisplayName || len(b.joints) != len(o.joints) {
		return false
	}
	for side, c := range b.joints {
		oc, ok := o.joints[side]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// ValidateJoints checks every configured joint against the side it is on.
// It returns one error per failing side, in side order.
func (b Board) ValidateJoints() []error {
	var errs []error
	sides := make([]joint.Side, 0, len(b.joints))
	for side := range b.joints {
		sides = append(sides, side)
	}
	sort.Slice(sides, func(i, j int) bool { return sideIndex(sides[i]) < sideIndex(sides[j]) })

	for _, side := range sides {
		length, err := b.SideLength(side)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := joint.Validate(b.joints[side], length); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (b Board) copyJoints() Board {
	out := b
	out.joints = make(map[joint.Side]joint.JointConfig, len(b.joints)+1)
	for side, c := range b.joints {
		out.joints[side] = c.Clone()
	}
	return out
}

func sideIndex(s joint.Side) int {
	for i, side := range joint.Sides {
		if side == s {
			return i
		}
	}
	return len(joint.Sides)
}

package carve

import (
	"errors"
	"fmt"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/joint"
)

// GrooveBox is the solid removed for one groove segment: an axis-aligned
// box with its size and center in board-local coordinates.
type GrooveBox struct {
	Side    joint.Side
	Segment joint.Segment
	Size    board.Vec3
	Center  board.Vec3
}

// ResolveDepth returns the depth grooves are cut to. A nil depth means the
// full board thickness; depths beyond the thickness are clamped to it and
// non-positive depths fall back to it, so a groove never cuts through or
// degenerates.
func ResolveDepth(grooveDepth *float64, thickness float64) float64 {
	if grooveDepth == nil {
		return thickness
	}
	depth := *grooveDepth
	if depth > thickness {
		return thickness
	}
	if !(depth > 0) {
		return thickness
	}
	return depth
}

// GrooveSolid positions the box for one groove segment cut depth deep into
// side of a board with dimensions dims.
func GrooveSolid(side joint.Side, seg joint.Segment, depth float64, dims board.Dimensions) (GrooveBox, error) {
	halfW := dims.Width / 2
	halfH := dims.Height / 2
	along := seg.Start + seg.Width/2

	gb := GrooveBox{Side: side, Segment: seg}
	switch side {
	case joint.SideTop:
		gb.Size = board.Vec3{X: seg.Width, Y: depth, Z: dims.Thickness}
		gb.Center = board.Vec3{X: -halfW + along, Y: halfH - depth/2}
	case joint.SideBottom:
		gb.Size = board.Vec3{X: seg.Width, Y: depth, Z: dims.Thickness}
		gb.Center = board.Vec3{X: -halfW + along, Y: -halfH + depth/2}
	case joint.SideLeft:
		gb.Size = board.Vec3{X: depth, Y: seg.Width, Z: dims.Thickness}
		gb.Center = board.Vec3{X: -halfW + depth/2, Y: -halfH + along}
	case joint.SideRight:
		gb.Size = board.Vec3{X: depth, Y: seg.Width, Z: dims.Thickness}
		gb.Center = board.Vec3{X: halfW - depth/2, Y: -halfH + along}
	case joint.SideFront, joint.SideBack:
		return GrooveBox{}, fmt.Errorf("side %s carries no joints", side)
	default:
		return GrooveBox{}, fmt.Errorf("invalid side %q", side)
	}
	return gb, nil
}

// Grooves collects the groove boxes of every joint on b, side by side in
// carving order. A side whose joint cannot be generated is skipped and
// reported as a *joint.ValidationError carrying that side; the other sides
// still contribute their grooves.
func Grooves(b board.Board) ([]GrooveBox, []error) {
	var (
		out  []GrooveBox
		errs []error
	)
	for _, cfg := range b.Joints() {
		boxes, err := sideGrooves(b, cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, boxes...)
	}
	return out, errs
}

func sideGrooves(b board.Board, cfg joint.JointConfig) ([]GrooveBox, error) {
	length, err := b.SideLength(cfg.Side)
	if err != nil {
		return nil, &joint.ValidationError{Side: cfg.Side, Message: err.Error()}
	}
	p, err := cfg.Pattern()
	if err != nil {
		return nil, &joint.ValidationError{Side: cfg.Side, Message: err.Error()}
	}
	// Fixed layouts are rebuilt from the side length, so only variable
	// widths can describe an impossible groove.
	if v, ok := p.(joint.Variable); ok {
		if err := joint.ValidateVariableJoint(v.Geometry, length); err != nil {
			return nil, sideError(cfg.Side, err)
		}
	}
	segs, err := joint.Generate(p, length)
	if err != nil {
		return nil, sideError(cfg.Side, err)
	}

	depth := ResolveDepth(cfg.GrooveDepth, b.Dimensions.Thickness)
	var out []GrooveBox
	for _, seg := range joint.Grooves(segs) {
		gb, err := GrooveSolid(cfg.Side, seg, depth, b.Dimensions)
		if err != nil {
			return nil, err
		}
		out = append(out, gb)
	}
	return out, nil
}

func sideError(side joint.Side, err error) error {
	var ve *joint.ValidationError
	if errors.As(err, &ve) {
		ve.Side = side
		return ve
	}
	return err
}

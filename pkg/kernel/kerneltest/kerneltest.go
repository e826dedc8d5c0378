// Package kerneltest provides an exact, analytic kernel.Kernel for tests.
// Solids are an axis-aligned box minus a list of axis-aligned boxes, which
// is all the carving pipeline ever builds, so containment can be checked
// without tessellating.
package kerneltest

import (
	"errors"
	"fmt"

	"github.com/chazu/boxjoint/pkg/kernel"
)

// ErrInjected is returned by Difference when FailDifference says so.
var ErrInjected = errors.New("kerneltest: injected boolean failure")

// AABB is an axis-aligned box given by its corners.
type AABB struct {
	Min, Max [3]float64
}

// Center returns the midpoint of the box.
func (b AABB) Center() [3]float64 {
	return [3]float64{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the edge lengths of the box.
func (b AABB) Size() [3]float64 {
	return [3]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

func (b AABB) contains(p [3]float64) bool {
	for a := 0; a < 3; a++ {
		if p[a] <= b.Min[a] || p[a] >= b.Max[a] {
			return false
		}
	}
	return true
}

func (b AABB) translate(x, y, z float64) AABB {
	d := [3]float64{x, y, z}
	for a := 0; a < 3; a++ {
		b.Min[a] += d[a]
		b.Max[a] += d[a]
	}
	return b
}

// Solid is Base minus every box in Holes.
type Solid struct {
	Base  AABB
	Holes []AABB
}

// BoundingBox returns the extent of the base box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	return s.Base.Min, s.Base.Max
}

// Contains reports whether p is inside the base and outside every hole.
func (s *Solid) Contains(p [3]float64) bool {
	if !s.Base.contains(p) {
		return false
	}
	for _, h := range s.Holes {
		if h.contains(p) {
			return false
		}
	}
	return true
}

// Kernel records every call and can be told to fail.
type Kernel struct {
	// FailDifference, when set, is consulted before each subtraction.
	FailDifference func(a, b *Solid) bool

	Boxes       int
	Differences int
	Rotations   int
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns a Kernel that never fails.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (*Solid, error) {
	ks, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("kerneltest: foreign solid %T", s)
	}
	return ks, nil
}

// Box returns a box centered at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("kerneltest: box size %gx%gx%g must be positive", x, y, z)
	}
	k.Boxes++
	return &Solid{Base: AABB{
		Min: [3]float64{-x / 2, -y / 2, -z / 2},
		Max: [3]float64{x / 2, y / 2, z / 2},
	}}, nil
}

// Difference subtracts b's base box from a. Holes already cut into b are
// ignored, as they are for every input the carver produces.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if k.FailDifference != nil && k.FailDifference(sa, sb) {
		return nil, ErrInjected
	}
	k.Differences++
	holes := make([]AABB, 0, len(sa.Holes)+1)
	holes = append(holes, sa.Holes...)
	holes = append(holes, sb.Base)
	return &Solid{Base: sa.Base, Holes: holes}, nil
}

// Translate moves the solid and its holes.
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ks, err := unwrap(s)
	if err != nil {
		panic(err)
	}
	out := &Solid{Base: ks.Base.translate(x, y, z)}
	for _, h := range ks.Holes {
		out.Holes = append(out.Holes, h.translate(x, y, z))
	}
	return out
}

// Rotate only counts calls; the analytic solid stays axis-aligned.
func (k *Kernel) Rotate(s kernel.Solid, _, _, _ float64) kernel.Solid {
	k.Rotations++
	return s
}

// ToMesh returns the 12 triangles of the base box.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ks, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	lo, hi := ks.Base.Min, ks.Base.Max
	corner := func(i int) [3]float64 {
		c := lo
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		return c
	}
	faces := [][4]int{{0, 2, 3, 1}, {4, 5, 7, 6}, {0, 1, 5, 4}, {2, 6, 7, 3}, {0, 4, 6, 2}, {1, 3, 7, 5}}

	m := &kernel.Mesh{}
	for _, f := range faces {
		for _, tri := range [][3]int{{f[0], f[1], f[2]}, {f[0], f[2], f[3]}} {
			for _, ci := range tri {
				c := corner(ci)
				m.Vertices = append(m.Vertices, float32(c[0]), float32(c[1]), float32(c[2]))
				m.Normals = append(m.Normals, 0, 0, 0)
				m.Indices = append(m.Indices, uint32(len(m.Indices)))
			}
		}
	}
	return m, nil
}

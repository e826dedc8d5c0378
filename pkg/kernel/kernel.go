// Package kernel defines the boolean-geometry contract the carving
// pipeline relies on. Implementations (sdfx) provide box primitives,
// rigid transforms, subtraction and meshing behind this interface so
// the backend can be swapped, or faked in tests, without touching the
// rest of the system.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Contains reports whether p lies strictly inside the solid.
	Contains(p [3]float64) bool
}

// Kernel is the boolean-geometry capability.
//
// Box and Difference are fallible: a kernel reports degenerate input or an
// internal failure as an error value rather than panicking.
type Kernel interface {
	// Box creates an axis-aligned box of the given size centered at the origin.
	Box(x, y, z float64) (Solid, error)

	// Difference returns a - b.
	Difference(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

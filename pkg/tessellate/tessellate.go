// Package tessellate is a scene.Renderer that keeps posed solids and turns
// them into triangle meshes with a geometry kernel, for frontends that
// draw raw triangles.
package tessellate

import (
	"fmt"
	"sort"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/kernel"
	"github.com/chazu/boxjoint/pkg/scene"
)

var _ scene.Renderer = (*Renderer)(nil)

// entry is one solid with its world pose.
type entry struct {
	solid    kernel.Solid // board-local
	position board.Vec3
	rotation board.Vec3
	mesh     *kernel.Mesh // cached world-space mesh, nil when stale
}

// Renderer implements scene.Renderer. It is not safe for concurrent use.
type Renderer struct {
	k       kernel.Kernel
	next    scene.Handle
	entries map[scene.Handle]*entry
}

// New returns a Renderer meshing through k.
func New(k kernel.Kernel) *Renderer {
	return &Renderer{k: k, entries: make(map[scene.Handle]*entry)}
}

// CreateSolid registers a new uncarved box and returns its handle.
func (r *Renderer) CreateSolid(dims board.Dimensions) scene.Handle {
	r.next++
	e := &entry{}
	if s, err := r.k.Box(dims.Width, dims.Height, dims.Thickness); err == nil {
		e.solid = s
	}
	r.entries[r.next] = e
	return r.next
}

// ReplaceSolid swaps in new board-local geometry.
func (r *Renderer) ReplaceSolid(h scene.Handle, s kernel.Solid) {
	if e, ok := r.entries[h]; ok {
		e.solid = s
		e.mesh = nil
	}
}

// ApplyPose sets the world position and rotation of a solid.
func (r *Renderer) ApplyPose(h scene.Handle, position, rotation board.Vec3) {
	e, ok := r.entries[h]
	if !ok {
		return
	}
	if e.position != position || e.rotation != rotation {
		e.position = position
		e.rotation = rotation
		e.mesh = nil
	}
}

// Remove forgets a handle.
func (r *Renderer) Remove(h scene.Handle) {
	delete(r.entries, h)
}

// Handles returns the live handles in creation order.
func (r *Renderer) Handles() []scene.Handle {
	hs := make([]scene.Handle, 0, len(r.entries))
	for h := range r.entries {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// Mesh returns the world-space mesh for h. Rotation is applied first,
// then translation, so boards rotate about their own center.
func (r *Renderer) Mesh(h scene.Handle) (*kernel.Mesh, error) {
	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("tessellate: unknown handle %d", h)
	}
	if e.solid == nil {
		return nil, fmt.Errorf("tessellate: handle %d has no geometry", h)
	}
	if e.mesh != nil {
		return e.mesh, nil
	}

	solid := e.solid
	if !e.rotation.IsZero() {
		solid = r.k.Rotate(solid, e.rotation.X, e.rotation.Y, e.rotation.Z)
	}
	if !e.position.IsZero() {
		solid = r.k.Translate(solid, e.position.X, e.position.Y, e.position.Z)
	}

	mesh, err := r.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for handle %d: %w", h, err)
	}
	e.mesh = mesh
	return mesh, nil
}

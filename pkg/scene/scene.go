// Package scene keeps a rendering collaborator in step with a set of
// boards. Every Refresh recarves all boards from scratch and pushes the
// results into the Renderer; the scene never patches geometry in place.
package scene

import (
	"go.uber.org/zap"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/carve"
	"github.com/chazu/boxjoint/pkg/kernel"
)

// Handle identifies a solid owned by a Renderer.
type Handle int

// Renderer is the display side of the pipeline. Geometry handed to
// ReplaceSolid is in board-local space; ApplyPose places it in the world.
type Renderer interface {
	CreateSolid(dims board.Dimensions) Handle
	ReplaceSolid(h Handle, s kernel.Solid)
	ApplyPose(h Handle, position, rotation board.Vec3)
	Remove(h Handle)
}

// Scene maps boards to renderer handles.
type Scene struct {
	renderer Renderer
	carver   *carve.Carver
	logger   *zap.Logger
	handles  map[string]Handle
}

// New returns a Scene drawing into r with geometry from c.
func New(r Renderer, c *carve.Carver, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scene{
		renderer: r,
		carver:   c,
		logger:   logger,
		handles:  make(map[string]Handle),
	}
}

// Refresh runs a full carve pass over boards and syncs the renderer:
// new boards get a handle, every board gets its solid and pose replaced,
// and handles of boards that disappeared are removed.
func (s *Scene) Refresh(boards []board.Board) carve.PassResult {
	res := s.carver.Pass(boards)

	seen := make(map[string]bool, len(boards))
	for i, b := range boards {
		seen[b.ID] = true
		out := res.Outcomes[i]

		h, ok := s.handles[b.ID]
		if !ok {
			h = s.renderer.CreateSolid(b.Dimensions)
			s.handles[b.ID] = h
		}
		if out.Solid != nil {
			s.renderer.ReplaceSolid(h, out.Solid)
		}
		s.renderer.ApplyPose(h, b.Position, b.Rotation)
	}

	for id, h := range s.handles {
		if !seen[id] {
			s.renderer.Remove(h)
			delete(s.handles, id)
			s.logger.Debug("board removed from scene", zap.String("board", id))
		}
	}
	return res
}

// Handle returns the renderer handle for boardID.
func (s *Scene) Handle(boardID string) (Handle, bool) {
	h, ok := s.handles[boardID]
	return h, ok
}

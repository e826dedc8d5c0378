// Package history keeps an undo/redo stack of project snapshots.
package history

import "github.com/chazu/boxjoint/pkg/project"

// DefaultCapacity is the number of snapshots kept before the oldest is
// evicted.
const DefaultCapacity = 50

// History is a linear list of snapshots with a cursor pointing at the
// current one. Snapshots are project values, so later edits never reach
// into the stack.
type History struct {
	snapshots []project.Project
	cursor    int
	capacity  int
}

// New returns a History seeded with initial. A capacity below 1 selects
// DefaultCapacity.
func New(initial project.Project, capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		snapshots: []project.Project{initial.Clone()},
		capacity:  capacity,
	}
}

// Push records p as the new current snapshot, discarding any redo tail.
func (h *History) Push(p project.Project) {
	h.snapshots = append(h.snapshots[:h.cursor+1], p.Clone())
	if len(h.snapshots) > h.capacity {
		drop := len(h.snapshots) - h.capacity
		h.snapshots = append([]project.Project(nil), h.snapshots[drop:]...)
	}
	h.cursor = len(h.snapshots) - 1
}

// Replace overwrites the snapshot under the cursor without adding an undo
// step. The redo tail is kept.
func (h *History) Replace(p project.Project) {
	h.snapshots[h.cursor] = p.Clone()
}

// Current returns the snapshot under the cursor.
func (h *History) Current() project.Project {
	return h.snapshots[h.cursor].Clone()
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Undo steps back one snapshot and returns it.
func (h *History) Undo() (project.Project, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.cursor--
	return h.Current(), true
}

// Redo steps forward one snapshot and returns it.
func (h *History) Redo() (project.Project, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.cursor++
	return h.Current(), true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Reset discards everything and seeds the history with p.
func (h *History) Reset(p project.Project) {
	h.snapshots = []project.Project{p.Clone()}
	h.cursor = 0
}

// Package project holds the editable state of a design: the ordered set of
// boards plus the current selection. Project is a value; the With* methods
// return new projects and never touch the receiver's boards.
package project

import (
	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/joint"
)

// Project is the root state record.
type Project struct {
	Boards                    []board.Board
	SelectedBoardID           string     // empty when nothing is selected
	SelectedSide              joint.Side // empty when no side is selected
	ShowUnselectedTransparent bool
}

// Board returns the board with the given ID.
func (p Project) Board(id string) (board.Board, bool) {
	for _, b := range p.Boards {
		if b.ID == id {
			return b, true
		}
	}
	return board.Board{}, false
}

// WithBoard returns a copy of p with b replacing the board of the same ID,
// or appended when no such board exists.
func (p Project) WithBoard(b board.Board) Project {
	out := p.Clone()
	for i := range out.Boards {
		if out.Boards[i].ID == b.ID {
			out.Boards[i] = b
			return out
		}
	}
	out.Boards = append(out.Boards, b)
	return out
}

// WithoutBoard returns a copy of p without the board id. The selection is
// cleared when it pointed at that board.
func (p Project) WithoutBoard(id string) Project {
	out := p
	out.Boards = make([]board.Board, 0, len(p.Boards))
	for _, b := range p.Boards {
		if b.ID != id {
			out.Boards = append(out.Boards, b)
		}
	}
	if out.SelectedBoardID == id {
		out.SelectedBoardID = ""
		out.SelectedSide = ""
	}
	return out
}

// WithSelection returns a copy of p with a new selection.
func (p Project) WithSelection(boardID string, side joint.Side) Project {
	out := p.Clone()
	out.SelectedBoardID = boardID
	out.SelectedSide = side
	return out
}

// Selected returns the selected board, if any.
func (p Project) Selected() (board.Board, bool) {
	if p.SelectedBoardID == "" {
		return board.Board{}, false
	}
	return p.Board(p.SelectedBoardID)
}

// Clone returns a copy of p with its own board slice. Boards are values
// with copy-on-write joints, so a shallow slice copy is enough.
func (p Project) Clone() Project {
	out := p
	out.Boards = append([]board.Board(nil), p.Boards...)
	return out
}

// Equal reports whether two projects hold the same state.
func (p Project) Equal(o Project) bool {
	if p.SelectedBoardID != o.SelectedBoardID ||
		p.SelectedSide != o.SelectedSide ||
		p.ShowUnselectedTransparent != o.ShowUnselectedTransparent ||
		len(p.Boards) != len(o.Boards) {
		return false
	}
	for i := range p.Boards {
		if !p.Boards[i].Equal(o.Boards[i]) {
			return false
		}
	}
	return true
}

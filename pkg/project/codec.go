package project

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/joint"
)

// Wire types mirror the persisted schema field for field.

type wireVec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireDimensions struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

type wireJoint struct {
	Side        string    `json:"side"`
	Mode        string    `json:"mode"`
	FingerWidth float64   `json:"fingerWidth"`
	FingerCount int       `json:"fingerCount"`
	CenterKeyed bool      `json:"centerKeyed"`
	Start       int       `json:"start"`
	Geometry    []float64 `json:"geometry"`
	GrooveDepth *float64  `json:"grooveDepth"`
}

type wireBoard struct {
	ID             string         `json:"id"`
	Dimensions     wireDimensions `json:"dimensions"`
	Position       wireVec3       `json:"position"`
	Rotation       wireVec3       `json:"rotation"`
	GrainDirection string         `json:"grainDirection"`
	WoodType       string         `json:"woodType"`
	DisplayName    string         `json:"displayName"`
	Joints         []jointPair    `json:"joints"`
}

type wireProject struct {
	Boards                    []boardPair `json:"boards"`
	SelectedBoardID           *string     `json:"selectedBoardId"`
	SelectedSide              *string     `json:"selectedSide"`
	ShowUnselectedTransparent bool        `json:"showUnselectedTransparent"`
}

// jointPair encodes as [side, joint].
type jointPair struct {
	Side  string
	Joint wireJoint
}

func (p jointPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Side, p.Joint})
}

func (p *jointPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("joint entry has %d elements, expected [side, joint]", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Side); err != nil {
		return fmt.Errorf("joint entry side: %w", err)
	}
	return json.Unmarshal(raw[1], &p.Joint)
}

// boardPair encodes as [id, board].
type boardPair struct {
	ID    string
	Board wireBoard
}

func (p boardPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.ID, p.Board})
}

func (p *boardPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("board entry has %d elements, expected [id, board]", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return fmt.Errorf("board entry id: %w", err)
	}
	return json.Unmarshal(raw[1], &p.Board)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func encodeJoint(c joint.JointConfig) wireJoint {
	geometry := c.Geometry
	if geometry == nil {
		geometry = []float64{}
	}
	return wireJoint{
		Side:        string(c.Side),
		Mode:        string(c.Mode),
		FingerWidth: c.FingerWidth,
		FingerCount: c.FingerCount,
		CenterKeyed: c.CenterKeyed,
		Start:       c.Start,
		Geometry:    geometry,
		GrooveDepth: c.GrooveDepth,
	}
}

// encodeBoard writes joints in side order (top, bottom, left, right) and
// a missing geometry as an empty list, whatever order they were read in.
func encodeBoard(b board.Board) wireBoard {
	w := wireBoard{
		ID:             b.ID,
		Dimensions:     wireDimensions(b.Dimensions),
		Position:       wireVec3(b.Position),
		Rotation:       wireVec3(b.Rotation),
		GrainDirection: b.GrainDirection,
		WoodType:       b.WoodType,
		DisplayName:    b.DisplayName,
		Joints:         []jointPair{},
	}
	for _, c := range b.Joints() {
		w.Joints = append(w.Joints, jointPair{Side: string(c.Side), Joint: encodeJoint(c)})
	}
	return w
}

// Marshal encodes p in the persisted schema.
func Marshal(p Project) ([]byte, error) {
	w := wireProject{
		Boards:                    make([]boardPair, 0, len(p.Boards)),
		SelectedBoardID:           optional(p.SelectedBoardID),
		SelectedSide:              optional(string(p.SelectedSide)),
		ShowUnselectedTransparent: p.ShowUnselectedTransparent,
	}
	for _, b := range p.Boards {
		w.Boards = append(w.Boards, boardPair{ID: b.ID, Board: encodeBoard(b)})
	}
	return json.MarshalIndent(w, "", "  ")
}

func decodeJoint(pairSide string, w wireJoint) (joint.JointConfig, error) {
	side, err := joint.ParseSide(pairSide)
	if err != nil {
		return joint.JointConfig{}, err
	}
	if w.Side != "" && w.Side != pairSide {
		return joint.JointConfig{}, fmt.Errorf("joint keyed %q declares side %q", pairSide, w.Side)
	}
	mode, err := joint.ParseMode(w.Mode)
	if err != nil {
		return joint.JointConfig{}, err
	}
	c := joint.JointConfig{
		Side:        side,
		Mode:        mode,
		FingerWidth: w.FingerWidth,
		FingerCount: w.FingerCount,
		CenterKeyed: w.CenterKeyed,
		Start:       w.Start,
		Geometry:    append([]float64(nil), w.Geometry...),
	}
	return c.WithGrooveDepth(w.GrooveDepth), nil
}

func decodeBoard(pairID string, w wireBoard) (board.Board, error) {
	id := w.ID
	if id == "" {
		id = pairID
	}
	if id != pairID {
		return board.Board{}, fmt.Errorf("board keyed %q declares id %q", pairID, w.ID)
	}
	b := board.NewWithID(id, board.Dimensions(w.Dimensions))
	b = b.WithPose(board.Vec3(w.Position), board.Vec3(w.Rotation))
	b.GrainDirection = w.GrainDirection
	b.WoodType = w.WoodType
	b.DisplayName = w.DisplayName
	for _, jp := range w.Joints {
		c, err := decodeJoint(jp.Side, jp.Joint)
		if err != nil {
			return board.Board{}, fmt.Errorf("board %s: %w", id, err)
		}
		if b, err = b.WithJoint(c); err != nil {
			return board.Board{}, fmt.Errorf("board %s: %w", id, err)
		}
	}
	return b, nil
}

// Unmarshal decodes a project in the persisted schema.
func Unmarshal(data []byte) (Project, error) {
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return Project{}, fmt.Errorf("decode project: %w", err)
	}

	p := Project{ShowUnselectedTransparent: w.ShowUnselectedTransparent}
	if w.SelectedBoardID != nil {
		p.SelectedBoardID = *w.SelectedBoardID
	}
	if w.SelectedSide != nil {
		side, err := joint.ParseSide(*w.SelectedSide)
		if err != nil {
			return Project{}, fmt.Errorf("decode project: selected side: %w", err)
		}
		p.SelectedSide = side
	}

	seen := make(map[string]bool, len(w.Boards))
	for _, bp := range w.Boards {
		if seen[bp.ID] {
			return Project{}, fmt.Errorf("decode project: duplicate board id %q", bp.ID)
		}
		seen[bp.ID] = true
		b, err := decodeBoard(bp.ID, bp.Board)
		if err != nil {
			return Project{}, fmt.Errorf("decode project: %w", err)
		}
		p.Boards = append(p.Boards, b)
	}
	return p, nil
}

// Load reads a project file.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("load project: %w", err)
	}
	return Unmarshal(data)
}

// Save writes p to path.
func Save(p Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

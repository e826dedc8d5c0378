package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chazu/boxjoint/internal/config"
	"github.com/chazu/boxjoint/pkg/carve"
	"github.com/chazu/boxjoint/pkg/engine"
	"github.com/chazu/boxjoint/pkg/history"
	"github.com/chazu/boxjoint/pkg/joint"
	"github.com/chazu/boxjoint/pkg/kernel"
	"github.com/chazu/boxjoint/pkg/kernel/sdfx"
	"github.com/chazu/boxjoint/pkg/project"
	"github.com/chazu/boxjoint/pkg/scene"
	"github.com/chazu/boxjoint/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to boards.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. Its exported methods are bound to the frontend.
// Every method locks the app, so bindings may be called concurrently.
type App struct {
	ctx    context.Context
	logger *zap.Logger

	mu       sync.Mutex
	engine   *engine.Engine
	renderer *tessellate.Renderer
	scene    *scene.Scene
	history  *history.History
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices    []float32 `json:"vertices"`
	Normals     []float32 `json:"normals"`
	Indices     []uint32  `json:"indices"`
	BoardID     string    `json:"boardId"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Selected    bool      `json:"selected"`
	Transparent bool      `json:"transparent"`
	// Stale is true when carving failed and the previous geometry is shown.
	Stale bool `json:"stale"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// WarningData reports a board that did not carve as configured.
type WarningData struct {
	BoardID        string   `json:"boardId"`
	Side           string   `json:"side"`
	Message        string   `json:"message"`
	SuggestedWidth *float64 `json:"suggestedWidth"`
}

// EvalResult is the full state returned to the frontend after every call.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []WarningData   `json:"warnings"`
	CanUndo  bool            `json:"canUndo"`
	CanRedo  bool            `json:"canRedo"`
}

// JointData is the frontend form of a joint.JointConfig.
type JointData struct {
	Side        string    `json:"side"`
	Mode        string    `json:"mode"`
	FingerWidth float64   `json:"fingerWidth"`
	FingerCount int       `json:"fingerCount"`
	CenterKeyed bool      `json:"centerKeyed"`
	Start       int       `json:"start"`
	Geometry    []float64 `json:"geometry"`
	GrooveDepth *float64  `json:"grooveDepth"`
}

// ValidationData is the answer to ValidateJoint.
type ValidationData struct {
	Valid          bool     `json:"valid"`
	Message        string   `json:"message"`
	SuggestedWidth *float64 `json:"suggestedWidth"`
}

// NewApp creates an App from cfg, meshing with the sdfx kernel.
func NewApp(cfg config.Config, logger *zap.Logger) *App {
	return newApp(sdfx.New(sdfx.WithMeshCells(cfg.Mesh.Cells)), cfg, logger)
}

func newApp(k kernel.Kernel, cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := tessellate.New(k)
	c := carve.New(k, carve.WithLogger(logger.Named("carve")))
	return &App{
		logger: logger,
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Eval.Timeout),
			engine.WithLogger(logger.Named("engine")),
		),
		renderer: r,
		scene:    scene.New(r, c, logger.Named("scene")),
		history:  history.New(project.Project{}, history.DefaultCapacity),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []WarningData{},
	}
}

func (r *EvalResult) fail(err error) {
	r.Errors = append(r.Errors, EvalErrorData{Message: err.Error()})
}

// Evaluate runs a design script. On success the resulting project
// replaces the current one and becomes an undo step.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate failed", zap.Error(err))
		result := a.render()
		result.fail(err)
		return result
	}
	if len(evalErrs) > 0 {
		result := a.render()
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	return a.commit(*p)
}

// LoadProject replaces the current project with a persisted one and
// starts a fresh undo history.
func (a *App) LoadProject(data string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := project.Unmarshal([]byte(data))
	if err != nil {
		result := a.render()
		result.fail(err)
		return result
	}
	a.history.Reset(p)
	return a.render()
}

// ExportProject returns the current project in the persisted schema.
func (a *App) ExportProject() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := project.Marshal(a.history.Current())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetJoint installs a joint on a board. A joint that does not fit its side
// is still stored; it is reported as a warning and left uncarved.
func (a *App) SetJoint(boardID string, j JointData) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.history.Current()
	cfg, err := j.config()
	if err == nil {
		err = a.updateBoard(&p, boardID, cfg)
	}
	if err != nil {
		result := a.render()
		result.fail(err)
		return result
	}
	return a.commit(p)
}

// RemoveJoint clears the joint on one side of a board.
func (a *App) RemoveJoint(boardID, side string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.history.Current()
	b, ok := p.Board(boardID)
	s, err := joint.ParseSide(side)
	if err == nil && !ok {
		err = fmt.Errorf("no board %q", boardID)
	}
	if err != nil {
		result := a.render()
		result.fail(err)
		return result
	}
	return a.commit(p.WithBoard(b.WithoutJoint(s)))
}

// Select changes the selected board and side. Selection is not an undo step.
func (a *App) Select(boardID, side string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.history.Current()
	var s joint.Side
	var err error
	if side != "" {
		s, err = joint.ParseSide(side)
	}
	if err == nil && boardID != "" {
		if _, ok := p.Board(boardID); !ok {
			err = fmt.Errorf("no board %q", boardID)
		}
	}
	if err != nil {
		result := a.render()
		result.fail(err)
		return result
	}
	a.history.Replace(p.WithSelection(boardID, s))
	return a.render()
}

// ValidateJoint checks j against the named board without changing anything.
func (a *App) ValidateJoint(boardID string, j JointData) ValidationData {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfg, err := j.config()
	if err != nil {
		return ValidationData{Message: err.Error()}
	}
	b, ok := a.history.Current().Board(boardID)
	if !ok {
		return ValidationData{Message: fmt.Sprintf("no board %q", boardID)}
	}
	length, err := b.SideLength(cfg.Side)
	if err != nil {
		return ValidationData{Message: err.Error()}
	}
	if err := joint.Validate(cfg, length); err != nil {
		v := ValidationData{Message: err.Error()}
		var ve *joint.ValidationError
		if errors.As(err, &ve) {
			v.SuggestedWidth = ve.SuggestedWidth
		}
		return v
	}
	return ValidationData{Valid: true}
}

// ParseGeometry parses a comma separated width list typed by the user.
func (a *App) ParseGeometry(text string) ([]float64, error) {
	return joint.ParseGeometryList(text)
}

// Undo restores the previous project.
func (a *App) Undo() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history.Undo()
	return a.render()
}

// Redo reapplies the next project.
func (a *App) Redo() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history.Redo()
	return a.render()
}

// Render recarves the current project without changing it.
func (a *App) Render() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.render()
}

// commit records p as a new undo step and renders it.
func (a *App) commit(p project.Project) EvalResult {
	a.history.Push(p)
	return a.render()
}

func (a *App) updateBoard(p *project.Project, boardID string, cfg joint.JointConfig) error {
	b, ok := p.Board(boardID)
	if !ok {
		return fmt.Errorf("no board %q", boardID)
	}
	b, err := b.WithJoint(cfg)
	if err != nil {
		return err
	}
	*p = p.WithBoard(b)
	return nil
}

// render runs a full carve pass over the current project and converts the
// scene into frontend meshes.
func (a *App) render() EvalResult {
	result := newResult()
	p := a.history.Current()
	result.CanUndo = a.history.CanUndo()
	result.CanRedo = a.history.CanRedo()

	// Validation runs first so misfit joints that still carve, such as a
	// fixed joint whose width was corrected, are reported with a suggestion.
	warned := make(map[string]bool)
	for _, w := range engine.CheckJoints(p) {
		warned[w.BoardID+"/"+string(w.Side)] = true
		result.Warnings = append(result.Warnings, WarningData{
			BoardID:        w.BoardID,
			Side:           string(w.Side),
			Message:        w.Message,
			SuggestedWidth: w.SuggestedWidth,
		})
	}

	pass := a.scene.Refresh(p.Boards)
	for i, b := range p.Boards {
		out := pass.Outcomes[i]
		for _, je := range out.Report.JointErrors {
			w := WarningData{BoardID: b.ID, Message: je.Error()}
			var ve *joint.ValidationError
			if errors.As(je, &ve) {
				w.Side = string(ve.Side)
				w.SuggestedWidth = ve.SuggestedWidth
			}
			if warned[b.ID+"/"+w.Side] {
				continue
			}
			result.Warnings = append(result.Warnings, w)
		}
		if out.Err != nil {
			result.Warnings = append(result.Warnings, WarningData{BoardID: b.ID, Message: out.Err.Error()})
		}

		h, ok := a.scene.Handle(b.ID)
		if !ok {
			continue
		}
		m, err := a.renderer.Mesh(h)
		if err != nil {
			a.logger.Warn("mesh unavailable", zap.String("board", b.ID), zap.Error(err))
			result.Warnings = append(result.Warnings, WarningData{BoardID: b.ID, Message: err.Error()})
			continue
		}
		selected := b.ID == p.SelectedBoardID
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:    m.Vertices,
			Normals:     m.Normals,
			Indices:     m.Indices,
			BoardID:     b.ID,
			Name:        b.Name(),
			Color:       colorPalette[i%len(colorPalette)],
			Selected:    selected,
			Transparent: p.ShowUnselectedTransparent && p.SelectedBoardID != "" && !selected,
			Stale:       out.Fallback(),
		})
	}
	return result
}

// config converts j to a joint.JointConfig.
func (j JointData) config() (joint.JointConfig, error) {
	side, err := joint.ParseSide(j.Side)
	if err != nil {
		return joint.JointConfig{}, err
	}
	mode, err := joint.ParseMode(j.Mode)
	if err != nil {
		return joint.JointConfig{}, err
	}
	cfg := joint.JointConfig{
		Side:        side,
		Mode:        mode,
		FingerWidth: j.FingerWidth,
		FingerCount: j.FingerCount,
		CenterKeyed: j.CenterKeyed,
		Start:       j.Start,
		Geometry:    append([]float64(nil), j.Geometry...),
	}
	return cfg.WithGrooveDepth(j.GrooveDepth), nil
}

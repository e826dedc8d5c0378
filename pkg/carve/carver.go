package carve

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/kernel"
)

// GeometryError reports a kernel failure while carving one board.
type GeometryError struct {
	BoardID string
	Err     error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("carve board %s: %v", e.BoardID, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Report describes one carve of one board.
type Report struct {
	BoardID string
	Grooves []GrooveBox
	// JointErrors lists sides that were skipped because their joint
	// configuration does not fit the board.
	JointErrors []error
}

// Outcome is the result of carving one board during a pass.
type Outcome struct {
	BoardID string
	Solid   kernel.Solid // nil only when not even a base box could be built
	Report  Report
	// Err is the geometry error that made this pass fall back. When set,
	// Solid is the previous good solid or the uncarved base box.
	Err error
}

// Fallback reports whether the outcome kept an older solid.
func (o Outcome) Fallback() bool {
	return o.Err != nil
}

// PassResult holds one outcome per board, in input order.
type PassResult struct {
	Outcomes []Outcome
}

// Solid returns the solid carved for boardID.
func (r PassResult) Solid(boardID string) (kernel.Solid, bool) {
	for _, o := range r.Outcomes {
		if o.BoardID == boardID {
			return o.Solid, o.Solid != nil
		}
	}
	return nil, false
}

// Failed returns the outcomes that fell back.
func (r PassResult) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Fallback() {
			out = append(out, o)
		}
	}
	return out
}

// Carver carves boards with a kernel and remembers the last solid that
// carved cleanly for each board. It is not safe for concurrent use.
type Carver struct {
	kernel   kernel.Kernel
	logger   *zap.Logger
	lastGood map[string]kernel.Solid
}

// Option configures a Carver.
type Option func(*Carver)

// WithLogger sets the logger used to report carve failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Carver) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Carver backed by k. By default it logs nothing.
func New(k kernel.Kernel, opts ...Option) *Carver {
	c := &Carver{
		kernel:   k,
		logger:   zap.NewNop(),
		lastGood: make(map[string]kernel.Solid),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CarveBoard builds b's carved solid from scratch: a fresh base box with
// every groove box subtracted in one batch. It does not consult or update
// the last-good cache. Kernel errors, and kernel panics, come back as a
// *GeometryError with a nil solid.
func (c *Carver) CarveBoard(b board.Board) (solid kernel.Solid, report Report, err error) {
	report.BoardID = b.ID
	grooves, jointErrs := Grooves(b)
	report.Grooves = grooves
	report.JointErrors = jointErrs

	defer func() {
		if r := recover(); r != nil {
			solid = nil
			err = &GeometryError{BoardID: b.ID, Err: fmt.Errorf("kernel panic: %v", r)}
		}
	}()

	if err := b.Dimensions.Validate(); err != nil {
		return nil, report, &GeometryError{BoardID: b.ID, Err: err}
	}

	base, err := c.kernel.Box(b.Dimensions.Width, b.Dimensions.Height, b.Dimensions.Thickness)
	if err != nil {
		return nil, report, &GeometryError{BoardID: b.ID, Err: fmt.Errorf("base box: %w", err)}
	}
	if len(grooves) == 0 {
		return base, report, nil
	}

	cutters := make([]kernel.Solid, 0, len(grooves))
	for i, g := range grooves {
		box, err := c.kernel.Box(g.Size.X, g.Size.Y, g.Size.Z)
		if err != nil {
			return nil, report, &GeometryError{BoardID: b.ID, Err: fmt.Errorf("groove %d on %s: %w", i, g.Side, err)}
		}
		cutters = append(cutters, c.kernel.Translate(box, g.Center.X, g.Center.Y, g.Center.Z))
	}

	result := base
	for i, cutter := range cutters {
		result, err = c.kernel.Difference(result, cutter)
		if err != nil {
			return nil, report, &GeometryError{BoardID: b.ID, Err: fmt.Errorf("subtract groove %d: %w", i, err)}
		}
	}
	return result, report, nil
}

// Pass recarves every board from its base dimensions. A board whose carve
// fails keeps its last good solid (or an uncarved base box if it has never
// carved cleanly); the failure does not touch any other board. Boards not
// in this pass are forgotten.
func (c *Carver) Pass(boards []board.Board) PassResult {
	next := make(map[string]kernel.Solid, len(boards))
	result := PassResult{Outcomes: make([]Outcome, 0, len(boards))}

	for _, b := range boards {
		solid, report, err := c.CarveBoard(b)
		out := Outcome{BoardID: b.ID, Solid: solid, Report: report}

		for _, je := range report.JointErrors {
			c.logger.Info("joint skipped", zap.String("board", b.ID), zap.Error(je))
		}

		if err != nil {
			out.Err = err
			out.Solid = c.fallback(b)
			c.logger.Warn("carve failed, keeping previous solid",
				zap.String("board", b.ID),
				zap.Int("grooves", len(report.Grooves)),
				zap.Bool("hasPrevious", c.lastGood[b.ID] != nil),
				zap.Error(err))
		} else {
			c.logger.Debug("board carved",
				zap.String("board", b.ID),
				zap.Int("grooves", len(report.Grooves)))
		}

		if out.Solid != nil {
			next[b.ID] = out.Solid
		}
		result.Outcomes = append(result.Outcomes, out)
	}

	c.lastGood = next
	return result
}

// LastGood returns the solid kept for boardID by the latest pass.
func (c *Carver) LastGood(boardID string) (kernel.Solid, bool) {
	s, ok := c.lastGood[boardID]
	return s, ok
}

func (c *Carver) fallback(b board.Board) kernel.Solid {
	if prev, ok := c.lastGood[b.ID]; ok {
		return prev
	}
	base, err := c.safeBox(b.Dimensions)
	if err != nil {
		c.logger.Error("no fallback solid", zap.String("board", b.ID), zap.Error(err))
		return nil
	}
	return base
}

func (c *Carver) safeBox(d board.Dimensions) (s kernel.Solid, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("kernel panic: %v", r)
		}
	}()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return c.kernel.Box(d.Width, d.Height, d.Thickness)
}

// IsGeometryError reports whether err came from the kernel.
func IsGeometryError(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}

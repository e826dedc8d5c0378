package carve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/joint"
	"github.com/chazu/boxjoint/pkg/kernel"
	"github.com/chazu/boxjoint/pkg/kernel/kerneltest"
)

func scenarioBoard(t *testing.T, id string, width float64) board.Board {
	t.Helper()
	b := board.NewWithID(id, board.Dimensions{Width: width, Height: 50, Thickness: 20})
	b, err := b.WithJoint(joint.NewFixed(joint.SideTop, joint.CalculateOptimalFingerWidth(5, width), 5, false))
	require.NoError(t, err)
	return b
}

func TestCarveBoardScenario(t *testing.T) {
	k := kerneltest.New()
	c := New(k)

	solid, report, err := c.CarveBoard(scenarioBoard(t, "b", 100))
	require.NoError(t, err)
	require.Len(t, report.Grooves, 4)
	assert.Equal(t, 5, k.Boxes, "one base box plus four cutters")
	assert.Equal(t, 4, k.Differences, "one subtraction per groove")

	w := 100.0 / 9
	for i := 0; i < 9; i++ {
		x := -50 + float64(i)*w + w/2
		inGroove := i%2 == 1
		assert.Equal(t, !inGroove, solid.Contains([3]float64{x, 20, 0}), "segment %d near the top edge", i)
		assert.True(t, solid.Contains([3]float64{x, 0, 0}), "segment %d below the groove depth", i)
	}
}

func TestCarveBoardNoJoints(t *testing.T) {
	k := kerneltest.New()
	solid, report, err := New(k).CarveBoard(board.NewWithID("plain", board.Dimensions{Width: 10, Height: 10, Thickness: 2}))
	require.NoError(t, err)
	assert.Empty(t, report.Grooves)
	assert.Equal(t, 0, k.Differences)
	assert.True(t, solid.Contains([3]float64{4.9, 4.9, 0}))
}

func TestCarveBoardGeometryError(t *testing.T) {
	k := &kerneltest.Kernel{FailDifference: func(a, b *kerneltest.Solid) bool { return len(a.Holes) == 2 }}
	solid, _, err := New(k).CarveBoard(scenarioBoard(t, "b", 100))
	require.Error(t, err)
	assert.Nil(t, solid, "a failed carve must not return a partial solid")
	assert.True(t, IsGeometryError(err))
	assert.True(t, errors.Is(err, kerneltest.ErrInjected))
}

func TestCarveBoardRejectsBadDimensions(t *testing.T) {
	_, _, err := New(kerneltest.New()).CarveBoard(board.NewWithID("flat", board.Dimensions{Width: 10, Height: 10}))
	assert.True(t, IsGeometryError(err))
}

type panickyKernel struct{ *kerneltest.Kernel }

func (panickyKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	panic("self-intersecting input")
}

func TestCarveBoardRecoversKernelPanic(t *testing.T) {
	c := New(panickyKernel{kerneltest.New()})
	solid, _, err := c.CarveBoard(scenarioBoard(t, "b", 100))
	require.Error(t, err)
	assert.Nil(t, solid)
	assert.Contains(t, err.Error(), "kernel panic")
}

func TestPassIsolatesFailures(t *testing.T) {
	// Board "bad" is 80 wide; its subtractions always fail.
	k := &kerneltest.Kernel{FailDifference: func(a, b *kerneltest.Solid) bool {
		return a.Base.Size()[0] == 80
	}}
	core, logs := observer.New(zap.WarnLevel)
	c := New(k, WithLogger(zap.New(core)))

	good := scenarioBoard(t, "good", 100)
	bad := scenarioBoard(t, "bad", 80)

	res := c.Pass([]board.Board{good, bad})
	require.Len(t, res.Outcomes, 2)

	assert.False(t, res.Outcomes[0].Fallback())
	assert.True(t, res.Outcomes[1].Fallback())
	require.Len(t, res.Failed(), 1)
	assert.Equal(t, "bad", res.Failed()[0].BoardID)

	goodSolid, ok := res.Solid("good")
	require.True(t, ok)
	assert.False(t, goodSolid.Contains([3]float64{-50 + 1.5*100/9, 20, 0}), "good board is carved")

	badSolid, ok := res.Solid("bad")
	require.True(t, ok, "bad board falls back to its base box")
	assert.True(t, badSolid.Contains([3]float64{-40 + 1.5*80/9, 20, 0}), "fallback is uncarved")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "bad", entry.ContextMap()["board"])
}

func TestPassKeepsLastGood(t *testing.T) {
	fail := false
	k := &kerneltest.Kernel{FailDifference: func(a, b *kerneltest.Solid) bool { return fail }}
	c := New(k)

	b := scenarioBoard(t, "b", 100)
	first := c.Pass([]board.Board{b})
	firstSolid, _ := first.Solid("b")

	// Edit the board, then make the kernel fail.
	edited, err := b.WithJoint(joint.NewFixed(joint.SideTop, 20, 3, false))
	require.NoError(t, err)
	fail = true
	second := c.Pass([]board.Board{edited})
	secondSolid, _ := second.Solid("b")

	assert.Same(t, firstSolid, secondSolid, "failed pass keeps the previous solid")
	last, ok := c.LastGood("b")
	require.True(t, ok)
	assert.Same(t, firstSolid, last)

	fail = false
	third := c.Pass([]board.Board{edited})
	thirdSolid, _ := third.Solid("b")
	assert.NotSame(t, firstSolid, thirdSolid)
}

func TestPassRecarvesFromBase(t *testing.T) {
	k := kerneltest.New()
	c := New(k)
	b := scenarioBoard(t, "b", 100)

	c.Pass([]board.Board{b})
	res := c.Pass([]board.Board{b})
	s, _ := res.Solid("b")
	holes := s.(*kerneltest.Solid).Holes
	assert.Len(t, holes, 4, "second pass must not stack cuts on the first")
}

func TestPassForgetsRemovedBoards(t *testing.T) {
	c := New(kerneltest.New())
	c.Pass([]board.Board{scenarioBoard(t, "a", 100), scenarioBoard(t, "b", 100)})
	c.Pass([]board.Board{scenarioBoard(t, "a", 100)})
	_, ok := c.LastGood("b")
	assert.False(t, ok)
}

func TestPassReportsJointErrors(t *testing.T) {
	b := scenarioBoard(t, "b", 100)
	b, _ = b.WithJoint(joint.NewVariable(joint.SideRight, 0, []float64{1, 2}))

	core, logs := observer.New(zap.InfoLevel)
	res := New(kerneltest.New(), WithLogger(zap.New(core))).Pass([]board.Board{b})
	out := res.Outcomes[0]
	assert.False(t, out.Fallback(), "a bad side does not fail the board")
	assert.Len(t, out.Report.JointErrors, 1)
	assert.Len(t, out.Report.Grooves, 4)
	assert.Equal(t, 1, logs.FilterMessage("joint skipped").Len())
}

func TestPassKeepsGoodSidesBesideNonPositiveWidths(t *testing.T) {
	b := board.NewWithID("b", board.Dimensions{Width: 100, Height: 50, Thickness: 20})
	b, _ = b.WithJoint(joint.NewVariable(joint.SideTop, 0, []float64{60, -10, 50}))
	b, _ = b.WithJoint(joint.NewFixed(joint.SideLeft, 10, 3, false))

	k := kerneltest.New()
	res := New(k).Pass([]board.Board{b})
	out := res.Outcomes[0]
	require.NoError(t, out.Err)
	assert.False(t, out.Fallback())

	require.Len(t, out.Report.JointErrors, 1)
	var ve *joint.ValidationError
	require.ErrorAs(t, out.Report.JointErrors[0], &ve)
	assert.Equal(t, joint.SideTop, ve.Side)

	require.Len(t, out.Report.Grooves, 2)
	s, ok := res.Solid("b")
	require.True(t, ok)
	assert.Len(t, s.(*kerneltest.Solid).Holes, 2, "left grooves are carved")
}

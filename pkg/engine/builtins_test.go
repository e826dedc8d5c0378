package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/boxjoint/pkg/joint"
	"github.com/chazu/boxjoint/pkg/project"
)

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(board :width 100)`,
			expect: `(board "__kw_width" 100)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(finger-joint ref :top)`,
			expect: `(finger_joint ref "__kw_top")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -5 0 0)`,
			expect: `(vec3 -5 0 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:finger-width`,
			expect: `"__kw_finger-width"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) project.Project {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, p)
	return *p
}

// evalFails evaluates source and expects a non-fatal eval error.
func evalFails(t *testing.T, source string) EvalError {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Nil(t, p)
	require.NotEmpty(t, evalErrs)
	return evalErrs[0]
}

func TestBoard(t *testing.T) {
	p := evalOK(t, `
(board "front" :width 100 :height 50 :thickness 20
       :position (vec3 1 2 3) :rotation (vec3 0 90 0)
       :wood "walnut" :grain "horizontal" :name "Front panel")
`)
	require.Len(t, p.Boards, 1)
	b := p.Boards[0]
	assert.Equal(t, "front", b.ID)
	assert.Equal(t, 100.0, b.Dimensions.Width)
	assert.Equal(t, 50.0, b.Dimensions.Height)
	assert.Equal(t, 20.0, b.Dimensions.Thickness)
	assert.Equal(t, 3.0, b.Position.Z)
	assert.Equal(t, 90.0, b.Rotation.Y)
	assert.Equal(t, "walnut", b.WoodType)
	assert.Equal(t, "horizontal", b.GrainDirection)
	assert.Equal(t, "Front panel", b.Name())
}

func TestBoardWithoutIDGetsUUID(t *testing.T) {
	p := evalOK(t, `(board :width 10 :height 10 :thickness 2)`)
	require.Len(t, p.Boards, 1)
	assert.Len(t, p.Boards[0].ID, 36)
}

func TestVariableReference(t *testing.T) {
	p := evalOK(t, `
(def t 19)
(board "side" :width 300 :height 200 :thickness t)
`)
	assert.Equal(t, 19.0, p.Boards[0].Dimensions.Thickness)
}

func TestFingerJoint(t *testing.T) {
	p := evalOK(t, `
(board "front" :width 100 :height 50 :thickness 20)
(finger-joint (part "front") :top :finger-width 11 :count 5 :center-keyed true :depth 12)
`)
	cfg, ok := p.Boards[0].Joint(joint.SideTop)
	require.True(t, ok)
	assert.Equal(t, joint.ModeFixed, cfg.Mode)
	assert.Equal(t, 11.0, cfg.FingerWidth)
	assert.Equal(t, 5, cfg.FingerCount)
	assert.True(t, cfg.CenterKeyed)
	require.NotNil(t, cfg.GrooveDepth)
	assert.Equal(t, 12.0, *cfg.GrooveDepth)
}

func TestVariableJoint(t *testing.T) {
	p := evalOK(t, `
(board "front" :width 100 :height 50 :thickness 20)
(variable-joint "front" :left :start 1 :geometry (list 10 20 20))
(variable-joint "front" :right :geometry "25, 25")
`)
	left, ok := p.Boards[0].Joint(joint.SideLeft)
	require.True(t, ok)
	assert.Equal(t, joint.ModeVariable, left.Mode)
	assert.Equal(t, 1, left.Start)
	assert.Equal(t, []float64{10, 20, 20}, left.Geometry)
	assert.Nil(t, left.GrooveDepth)

	right, ok := p.Boards[0].Joint(joint.SideRight)
	require.True(t, ok)
	assert.Equal(t, []float64{25, 25}, right.Geometry)
}

func TestEvenAndMirror(t *testing.T) {
	p := evalOK(t, `
(board "a" :width 100 :height 60 :thickness 20)
(variable-joint "a" :left :geometry (even 60 3))
(variable-joint "a" :top :geometry (mirror (list 10 15 25)))
`)
	left, _ := p.Boards[0].Joint(joint.SideLeft)
	assert.Equal(t, []float64{20, 20, 20}, left.Geometry)
	top, _ := p.Boards[0].Joint(joint.SideTop)
	assert.Equal(t, []float64{10, 15, 25, 25, 15, 10}, top.Geometry)
}

func TestSelect(t *testing.T) {
	p := evalOK(t, `
(board "a" :width 10 :height 10 :thickness 2)
(select (part "a") :bottom)
`)
	assert.Equal(t, "a", p.SelectedBoardID)
	assert.Equal(t, joint.SideBottom, p.SelectedSide)
}

func TestBoardOrderIsScriptOrder(t *testing.T) {
	p := evalOK(t, `
(board "c" :width 10 :height 10 :thickness 2)
(board "a" :width 10 :height 10 :thickness 2)
(board "b" :width 10 :height 10 :thickness 2)
`)
	ids := []string{p.Boards[0].ID, p.Boards[1].ID, p.Boards[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown part", `(part "nope")`, "no part named"},
		{"missing dimension", `(board "a" :width 10 :height 10)`, "missing :thickness"},
		{"zero dimension", `(board "a" :width 0 :height 10 :thickness 1)`, "must be positive"},
		{"duplicate board", `(board "a" :width 1 :height 1 :thickness 1) (board "a" :width 1 :height 1 :thickness 1)`, "duplicate part"},
		{"front side joint", `(board "a" :width 10 :height 10 :thickness 1) (finger-joint "a" :front :finger-width 1 :count 1)`, "carries no joints"},
		{"bad side", `(board "a" :width 10 :height 10 :thickness 1) (finger-joint "a" :middle :finger-width 1 :count 1)`, "invalid side"},
		{"bad geometry string", `(board "a" :width 10 :height 10 :thickness 1) (variable-joint "a" :top :geometry "1,x")`, "x"},
		{"bad start", `(board "a" :width 10 :height 10 :thickness 1) (variable-joint "a" :top :start 2 :geometry (list 10))`, "start must be 0 or 1"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := evalFails(t, tt.source)
			assert.Contains(t, e.Message, tt.want)
		})
	}
}

func TestCheckJoints(t *testing.T) {
	p := evalOK(t, `
(board "front" :width 100 :height 50 :thickness 20)
(finger-joint "front" :top :finger-width 10 :count 5)
(variable-joint "front" :left :geometry (list 10 10))
`)
	warnings := CheckJoints(p)
	require.Len(t, warnings, 2)

	assert.Equal(t, "front", warnings[0].BoardID)
	assert.Equal(t, joint.SideTop, warnings[0].Side)
	require.NotNil(t, warnings[0].SuggestedWidth)
	assert.Equal(t, 11.0, *warnings[0].SuggestedWidth)
	assert.Contains(t, warnings[0].Message, "top")

	assert.Nil(t, warnings[1].SuggestedWidth)
	assert.Equal(t, joint.SideLeft, warnings[1].Side)
	assert.Contains(t, warnings[1].Message, "left")
}

func TestRunBundlesWarnings(t *testing.T) {
	res, err := NewEngine().Run(`
(board "front" :width 100 :height 50 :thickness 20)
(finger-joint "front" :top :finger-width 10 :count 5)
`)
	require.NoError(t, err)
	require.NotNil(t, res.Project)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Warnings, 1)
}

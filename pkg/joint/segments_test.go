package joint

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertTiles checks that segs alternate in type and cover [0, dimension]
// without gaps or overlaps.
func assertTiles(t *testing.T, segs []Segment, dimension float64) {
	t.Helper()
	require.NotEmpty(t, segs)
	assert.InDelta(t, 0, segs[0].Start, 1e-9)
	total := 0.0
	for i, s := range segs {
		assert.Greater(t, s.Width, 0.0, "segment %d width", i)
		total += s.Width
		if i > 0 {
			assert.NotEqual(t, segs[i-1].Type, s.Type, "segments %d and %d share a type", i-1, i)
			assert.InDelta(t, segs[i-1].End(), s.Start, 1e-9, "gap before segment %d", i)
		}
	}
	assert.InDelta(t, dimension, total, 1e-9)
}

func TestGenerateFixedSegments_Tiling(t *testing.T) {
	for _, dim := range []float64{1, 7.3, 100, 333.33, 1200} {
		for count := 1; count <= 20; count++ {
			segs, err := GenerateFixedSegments(Fixed{FingerWidth: 1, FingerCount: count}, dim)
			require.NoError(t, err)
			require.Len(t, segs, 2*count-1)

			assert.Equal(t, SegmentFinger, segs[0].Type)
			assert.Equal(t, SegmentFinger, segs[len(segs)-1].Type)

			want := dim / float64(2*count-1)
			for _, s := range segs {
				assert.InDelta(t, want, s.Width, 1e-12)
			}
			assertTiles(t, segs, dim)
		}
	}
}

func TestGenerateFixedSegments_IgnoresRequestedWidth(t *testing.T) {
	a, err := GenerateFixedSegments(Fixed{FingerWidth: 10, FingerCount: 5}, 100)
	require.NoError(t, err)
	b, err := GenerateFixedSegments(Fixed{FingerWidth: 11, FingerCount: 5}, 100)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.InDelta(t, 100.0/9, a[0].Width, 1e-12)
}

func TestGenerateFixedSegments_CenterKeyedSameLayout(t *testing.T) {
	plain, err := GenerateFixedSegments(Fixed{FingerWidth: 11, FingerCount: 5}, 100)
	require.NoError(t, err)
	keyed, err := GenerateFixedSegments(Fixed{FingerWidth: 11, FingerCount: 5, CenterKeyed: true}, 100)
	require.NoError(t, err)
	assert.Equal(t, plain, keyed)
}

func TestGenerateFixedSegments_Errors(t *testing.T) {
	_, err := GenerateFixedSegments(Fixed{FingerWidth: 10, FingerCount: 0}, 100)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "finger count")

	_, err = GenerateFixedSegments(Fixed{FingerWidth: 10, FingerCount: 3}, 0)
	require.Error(t, err)
}

func TestGenerateVariableSegments(t *testing.T) {
	geometry := []float64{10, 25, 30, 25, 10}

	for _, start := range []int{0, 1} {
		segs, err := GenerateVariableSegments(Variable{Start: start, Geometry: geometry}, 100)
		require.NoError(t, err)
		require.Len(t, segs, len(geometry))

		first := SegmentFinger
		if start == 1 {
			first = SegmentGroove
		}
		assert.Equal(t, first, segs[0].Type, "start=%d", start)

		offset := 0.0
		for i, s := range segs {
			assert.Equal(t, geometry[i], s.Width)
			assert.InDelta(t, offset, s.Start, 1e-12)
			offset += s.Width
		}
		assertTiles(t, segs, 100)
	}
}

func TestGenerateVariableSegments_SumMismatch(t *testing.T) {
	_, err := GenerateVariableSegments(Variable{Geometry: []float64{10, 20}}, 100)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "add up to")
}

func TestGenerate_Dispatch(t *testing.T) {
	segs, err := Generate(Fixed{FingerWidth: 20, FingerCount: 3}, 100)
	require.NoError(t, err)
	assert.Len(t, segs, 5)

	segs, err = Generate(Variable{Start: 1, Geometry: []float64{40, 60}}, 100)
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Start: 0, Width: 40, Type: SegmentGroove},
		{Start: 40, Width: 60, Type: SegmentFinger},
	}, segs)

	_, err = Generate(nil, 100)
	assert.Error(t, err)
}

func TestDistributeEvenly(t *testing.T) {
	assert.Equal(t, []float64{30, 30, 30}, DistributeEvenly(90, 3))
	assert.Equal(t, []float64{}, DistributeEvenly(90, 0))
	assert.Equal(t, []float64{}, DistributeEvenly(90, -2))

	got := DistributeEvenly(100, 3)
	want := []float64{100.0 / 3, 100.0 / 3, 100.0 / 3}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("DistributeEvenly(100, 3) mismatch (-want +got):\n%s", diff)
	}
}

func TestMirrorPattern(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3, 3, 2, 1}, MirrorPattern([]float64{1, 2, 3}))
	assert.Equal(t, []float64{}, MirrorPattern(nil))

	in := []float64{5, 7}
	out := MirrorPattern(in)
	assert.Len(t, out, 2*len(in))
	assert.Equal(t, []float64{5, 7}, in, "input must not be modified")
}

func TestMirrorPattern_FeedsVariableGenerator(t *testing.T) {
	half := DistributeEvenly(50, 5)
	geometry := MirrorPattern(half)
	segs, err := GenerateVariableSegments(Variable{Geometry: geometry}, 100)
	require.NoError(t, err)
	assert.Len(t, segs, 10)
	assert.False(t, math.IsNaN(segs[9].End()))
	assertTiles(t, segs, 100)
}

func TestGrooves(t *testing.T) {
	segs, err := GenerateFixedSegments(Fixed{FingerWidth: 11, FingerCount: 5}, 100)
	require.NoError(t, err)
	grooves := Grooves(segs)
	require.Len(t, grooves, 4)
	for i, g := range grooves {
		assert.Equal(t, SegmentGroove, g.Type)
		assert.InDelta(t, float64(2*i+1)*100/9, g.Start, 1e-9)
	}
}

func TestSegmentTypeString(t *testing.T) {
	assert.Equal(t, "finger", SegmentFinger.String())
	assert.Equal(t, "groove", SegmentGroove.String())
	assert.Equal(t, "unknown", SegmentType(9).String())
}

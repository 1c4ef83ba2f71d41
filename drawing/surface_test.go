package drawing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blot-bot-org/core-lib/hardware"
	"github.com/blot-bot-org/core-lib/instruction"
)

func testDims() *hardware.PhysicalDimensions {
	return &hardware.PhysicalDimensions{
		MotorInterspace:      1000,
		PageHorizontalOffset: 395,
		PageVerticalOffset:   250,
		PageWidth:            210,
		PageHeight:           297,
	}
}

func TestFirstSampleEmitsNoBytes(t *testing.T) {
	s := NewSurface(testDims())
	require.NoError(t, s.SampleXY(10, 20))
	require.Empty(t, s.Instructions())

	x, y, ok := s.FirstSample()
	require.True(t, ok)
	require.Equal(t, 10.0, x)
	require.Equal(t, 20.0, y)

	gx, gy := s.XY()
	require.InDelta(t, 10, gx, 1e-9)
	require.InDelta(t, 20, gy, 1e-9)
}

func TestSampleEncodesDeltaSteps(t *testing.T) {
	dims := testDims()
	s := NewSurface(dims)
	require.NoError(t, s.SampleXY(0, 0))
	require.NoError(t, s.SampleXY(50, 0))
	ins := s.Instructions()
	require.Len(t, ins, 5)
	require.Equal(t, byte(instruction.OpTerminator), ins[4])

	// Recompute the expected deltas directly from the kinematics.
	l0, r0 := hardware.CartesianToBelt(dims.PageHorizontalOffset, dims.PageVerticalOffset, dims.MotorInterspace)
	l1, r1 := hardware.CartesianToBelt(dims.PageHorizontalOffset+50, dims.PageVerticalOffset, dims.MotorInterspace)
	wantL := int16(math.Round(hardware.MMToSteps(l1 - l0)))
	wantR := int16(math.Round(-hardware.MMToSteps(r1 - r0)))

	set, err := instruction.NewSet(ins, 0, 0)
	require.NoError(t, err)
	steps := set.ParseToNumericalSteps()
	require.Equal(t, wantL, steps[0].Left)
	require.Equal(t, wantR, steps[0].Right)
}

func TestReplayConvergesToLastSample(t *testing.T) {
	dims := testDims()
	s := NewSurface(dims)
	require.NoError(t, s.SampleXY(0, 0))
	path := [][2]float64{
		{5, 2}, {11.5, 7.25}, {30, 30}, {29.5, 31}, {100, 150},
		{99, 150}, {0.5, 296}, {210, 296.5}, {13.375, 42.875},
	}
	for _, p := range path {
		require.NoError(t, s.SampleXY(p[0], p[1]))
	}

	set, err := instruction.NewSet(s.Instructions(), 0, 0)
	require.NoError(t, err)

	belts := hardware.NewBeltsByCartesian(dims.PageHorizontalOffset, dims.PageVerticalOffset, dims.MotorInterspace)
	for _, step := range set.ParseToNumericalSteps() {
		belts.MoveBySteps(step.Left, -step.Right)
	}
	x, y := belts.Cartesian()
	last := path[len(path)-1]
	tol := 1 / hardware.StepsPerMM()
	require.InDelta(t, dims.PageHorizontalOffset+last[0], x, tol)
	require.InDelta(t, dims.PageVerticalOffset+last[1], y, tol)
}

func TestStepOverflowLeavesStateUnchanged(t *testing.T) {
	dims := &hardware.PhysicalDimensions{
		MotorInterspace:      20000,
		PageHorizontalOffset: 100,
		PageVerticalOffset:   100,
		PageWidth:            15000,
		PageHeight:           5000,
	}
	s := NewSurface(dims)
	require.NoError(t, s.SampleXY(0, 0))
	l0, r0 := s.belts.Lengths()

	// A 10 metre move needs far more than math.MaxInt16 steps.
	err := s.SampleXY(10000, 0)
	var overflow *StepOverflowError
	require.ErrorAs(t, err, &overflow)
	require.Empty(t, s.Instructions())
	l1, r1 := s.belts.Lengths()
	require.Equal(t, l0, l1)
	require.Equal(t, r0, r1)
}

func TestPopSampleIsLeftInverse(t *testing.T) {
	s := NewSurface(testDims())
	require.NoError(t, s.SampleXY(0, 0))
	require.NoError(t, s.SampleXY(30, 40))
	bytesBefore := append([]byte(nil), s.Instructions()...)
	l0, r0 := s.belts.Lengths()

	require.NoError(t, s.SampleXY(60, 10))
	require.NoError(t, s.PopSample())

	require.Equal(t, bytesBefore, s.Instructions())
	l1, r1 := s.belts.Lengths()
	require.InDelta(t, l0, l1, 1e-9)
	require.InDelta(t, r0, r1, 1e-9)
}

func TestPopSampleSixBytes(t *testing.T) {
	s := NewSurface(testDims())
	require.NoError(t, s.SampleXY(0, 0))
	require.NoError(t, s.SampleXY(30, 40))
	l0, r0 := s.belts.Lengths()

	require.NoError(t, s.SampleXY(45, 45))
	s.RaisePen(true)
	require.Len(t, s.Instructions(), 11)
	require.NoError(t, s.PopSample())

	require.Len(t, s.Instructions(), 5)
	l1, r1 := s.belts.Lengths()
	require.InDelta(t, l0, l1, 1e-9)
	require.InDelta(t, r0, r1, 1e-9)
}

func TestPopEmptyFails(t *testing.T) {
	s := NewSurface(testDims())
	require.ErrorIs(t, s.PopSample(), ErrNoSamples)
	require.NoError(t, s.SampleXY(0, 0))
	// The first sample emits no instruction, so there is still nothing
	// to pop.
	require.ErrorIs(t, s.PopSample(), ErrNoSamples)
}

func TestRaisePenMutatesLastInstruction(t *testing.T) {
	s := NewSurface(testDims())
	require.NoError(t, s.SampleXY(0, 0))
	require.NoError(t, s.SampleXY(10, 10))
	require.Len(t, s.Instructions(), 5)

	s.RaisePen(true)
	ins := s.Instructions()
	require.Len(t, ins, 6)
	require.Equal(t, byte(instruction.OpPenUp), ins[4])
	require.Equal(t, byte(instruction.OpTerminator), ins[5])

	// A second call replaces the pen op instead of growing the
	// instruction.
	s.RaisePen(false)
	ins = s.Instructions()
	require.Len(t, ins, 6)
	require.Equal(t, byte(instruction.OpPenDown), ins[4])
}

func TestRaisePenBeforeFirstInstruction(t *testing.T) {
	s := NewSurface(testDims())
	s.RaisePen(true)
	require.NoError(t, s.SampleXY(0, 0))
	require.Empty(t, s.Instructions())

	require.NoError(t, s.SampleXY(5, 5))
	ins := s.Instructions()
	require.Len(t, ins, 6)
	require.Equal(t, byte(instruction.OpPenUp), ins[4])
}

func TestPenToStartIns(t *testing.T) {
	dims := testDims()
	raw := PenToStartIns(dims, 25, 35)
	set, err := instruction.NewSet(raw, 0, 0)
	require.NoError(t, err)
	steps := set.ParseToNumericalSteps()
	require.Len(t, steps, 1)

	belts := hardware.NewBeltsByCartesian(dims.PageHorizontalOffset, dims.PageVerticalOffset, dims.MotorInterspace)
	belts.MoveBySteps(steps[0].Left, -steps[0].Right)
	x, y := belts.Cartesian()
	tol := 1 / hardware.StepsPerMM()
	require.InDelta(t, dims.PageHorizontalOffset+25, x, tol)
	require.InDelta(t, dims.PageVerticalOffset+35, y, tol)
}

func TestGeneratorsProduceValidSets(t *testing.T) {
	dims := testDims()
	for _, m := range Methods() {
		t.Run(m.ID(), func(t *testing.T) {
			ins, initX, initY, err := GenInstructions(m, dims, nil)
			require.NoError(t, err)
			_, err = instruction.NewSet(ins, initX, initY)
			require.NoError(t, err)
		})
	}
}

func TestLinesParams(t *testing.T) {
	dims := testDims()
	m := &LinesMethod{}
	params, err := json.Marshal(LinesParams{NumLines: 3, LineSpacing: 5, HorizontalMargin: 20})
	require.NoError(t, err)
	ins, _, _, err := GenInstructions(m, dims, params)
	require.NoError(t, err)
	require.NotEmpty(t, ins)

	bad, err := json.Marshal(LinesParams{NumLines: 0, LineSpacing: 5})
	require.NoError(t, err)
	_, _, _, err = GenInstructions(m, dims, bad)
	require.Error(t, err)
}

func TestQRDoesNotFitPage(t *testing.T) {
	m := &QRMethod{}
	params, err := json.Marshal(QRParams{Content: "hello", ModuleSize: 50, MarginX: 10, MarginY: 10})
	require.NoError(t, err)
	_, _, _, err = GenInstructions(m, testDims(), params)
	require.Error(t, err)
}

package hardware

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCartesianBeltRoundTrip(t *testing.T) {
	tests := []struct {
		x, y, interspace float64
	}{
		{100, 100, 1000},
		{1, 1, 1000},
		{999, 500, 1000},
		{500, 0.5, 1000},
		{320.25, 871.125, 640.5},
		{0.001, 10, 2},
	}
	for _, tt := range tests {
		l, r := CartesianToBelt(tt.x, tt.y, tt.interspace)
		x, y := BeltToCartesian(l, r, tt.interspace)
		require.InDelta(t, tt.x, x, 1e-9, "x for (%v,%v)", tt.x, tt.y)
		require.InDelta(t, tt.y, y, 1e-9, "y for (%v,%v)", tt.x, tt.y)
	}
}

func TestBeltToCartesianUnreachable(t *testing.T) {
	// Right belt longer than physically possible for the left one.
	_, y := BeltToCartesian(10, 5000, 1000)
	if !math.IsNaN(y) {
		t.Fatalf("expected NaN projection, got %v", y)
	}
}

func TestStepsPerMM(t *testing.T) {
	require.InDelta(t, 80.65, StepsPerMM(), 0.05)
	require.InDelta(t, 1.0, MMToSteps(StepsToMM(81)/81), 1e-9)
	require.InDelta(t, 12.4, StepsToMM(1000), 0.05)
}

func TestBeltsMoveBySteps(t *testing.T) {
	b := NewBeltsByCartesian(300, 400, 1000)
	l0, r0 := b.Lengths()
	require.InDelta(t, 500, l0, 1e-9)

	b.MoveBySteps(100, -50)
	l1, r1 := b.Lengths()
	require.InDelta(t, l0+StepsToMM(100), l1, 1e-12)
	require.InDelta(t, r0+StepsToMM(-50), r1, 1e-12)

	b.MoveBySteps(-100, 50)
	l2, r2 := b.Lengths()
	require.InDelta(t, l0, l2, 1e-9)
	require.InDelta(t, r0, r2, 1e-9)
}

func TestDimensionsValidate(t *testing.T) {
	good := PhysicalDimensions{
		MotorInterspace:      1000,
		PageHorizontalOffset: 105,
		PageVerticalOffset:   250,
		PageWidth:            210,
		PageHeight:           297,
	}
	require.NoError(t, good.Validate())

	bad := good
	bad.PageWidth = 0
	require.Error(t, bad.Validate())

	bad = good
	bad.MotorInterspace = math.NaN()
	require.Error(t, bad.Validate())

	bad = good
	bad.PageHeight = math.Inf(1)
	require.Error(t, bad.Validate())
}

// Package preview reconstructs the pen path of an instruction set and
// renders it into a grayscale raster.
package preview

import (
	"fmt"
	"image"
	"math"

	"github.com/blot-bot-org/core-lib/hardware"
	"github.com/blot-bot-org/core-lib/instruction"
)

// DrawingOutOfBoundsError reports an instruction that drives the pen to
// a physically unreachable belt configuration.
type DrawingOutOfBoundsError struct {
	Index      int
	LeftSteps  int16
	RightSteps int16
	PrevX      float64
	PrevY      float64
	TargetX    float64
	TargetY    float64
}

func (e *DrawingOutOfBoundsError) Error() string {
	return fmt.Sprintf("instruction #%d steps l:%d r:%d moves the pen out of bounds, from x:%v y:%v to x:%v y:%v",
		e.Index, e.LeftSteps, e.RightSteps, e.PrevX, e.PrevY, e.TargetX, e.TargetY)
}

// Generate replays the instruction set through a fresh belt accumulator
// and strokes the path onto a canvas of scale pixels per millimetre.
func Generate(dims *hardware.PhysicalDimensions, set *instruction.Set, scale int) (*image.Gray, error) {
	canvas, err := replay(dims, set, scale)
	if err != nil {
		return nil, err
	}
	return canvas.Rasterize(), nil
}

// GenerateFile renders the preview and saves it as a PNG.
func GenerateFile(dims *hardware.PhysicalDimensions, set *instruction.Set, path string, scale int) error {
	canvas, err := replay(dims, set, scale)
	if err != nil {
		return err
	}
	return canvas.Save(path)
}

func replay(dims *hardware.PhysicalDimensions, set *instruction.Set, scale int) (*Canvas, error) {
	canvas := NewCanvas(int(dims.PageWidth), int(dims.PageHeight), scale)

	initX, initY := set.Init()
	belts := hardware.NewBeltsByCartesian(
		dims.PageHorizontalOffset+initX,
		dims.PageVerticalOffset+initY,
		dims.MotorInterspace,
	)
	lastX, lastY := belts.Cartesian()
	canvas.MoveTo(lastX-dims.PageHorizontalOffset, lastY-dims.PageVerticalOffset)

	for i, step := range set.ParseToNumericalSteps() {
		// Undo the right motor's wire sign before accumulating.
		belts.MoveBySteps(step.Left, -step.Right)
		x, y := belts.Cartesian()
		if math.IsNaN(x) || math.IsNaN(y) {
			return nil, &DrawingOutOfBoundsError{
				Index:      i,
				LeftSteps:  step.Left,
				RightSteps: step.Right,
				PrevX:      lastX,
				PrevY:      lastY,
				TargetX:    x,
				TargetY:    y,
			}
		}
		canvas.LineTo(x-dims.PageHorizontalOffset, y-dims.PageVerticalOffset)
		lastX, lastY = x, y
	}
	return canvas, nil
}

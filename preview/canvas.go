package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Canvas is a grayscale raster the decoded pen path is stroked onto.
// Coordinates are in millimetres relative to the top left of the page;
// scale converts them to pixels.
type Canvas struct {
	scale   float64
	img     *image.Gray
	dasher  *rasterx.Dasher
	started bool
	lastX   float64
	lastY   float64
}

// NewCanvas returns a white canvas for a page of the given size in
// millimetres, scale pixels per millimetre.
func NewCanvas(paperWidth, paperHeight, scale int) *Canvas {
	if scale < 1 {
		scale = 1
	}
	w, h := paperWidth*scale, paperHeight*scale
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetStroke(fixed.I(1), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	dasher.SetColor(color.Black)
	return &Canvas{scale: float64(scale), img: img, dasher: dasher}
}

// MoveTo repositions the path without stroking.
func (c *Canvas) MoveTo(x, y float64) {
	if c.started {
		c.dasher.Stop(false)
		c.started = false
	}
	c.lastX, c.lastY = x, y
}

// LineTo strokes from the current position to (x, y).
func (c *Canvas) LineTo(x, y float64) {
	if !c.started {
		c.dasher.Start(rasterx.ToFixedP(c.lastX*c.scale, c.lastY*c.scale))
		c.started = true
	}
	c.dasher.Line(rasterx.ToFixedP(x*c.scale, y*c.scale))
	c.lastX, c.lastY = x, y
}

// Rasterize flushes the accumulated path onto the image.
func (c *Canvas) Rasterize() *image.Gray {
	if c.started {
		c.dasher.Stop(false)
		c.started = false
	}
	c.dasher.Draw()
	return c.img
}

// Save rasterizes and writes the canvas to a PNG file.
func (c *Canvas) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create image: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, c.Rasterize()); err != nil {
		return fmt.Errorf("preview: encode image: %w", err)
	}
	return nil
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package render produces visual diagnostics for a trace run: a
// snapshot image of one plane of the working-time volume, and a
// coverage-vs-iteration plot.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/js-arias/blind"

	"github.com/rivulet-trace/rivulet/traceloop"
	"github.com/rivulet-trace/rivulet/volume"
)

// Gradienter is a color scheme over the unit interval, matched
// against working-time voxel coverage.
type Gradienter interface {
	Gradient(v float64) color.Color
}

// Incandescent is the colorblind-safe incandescent scheme of Paul
// Tol, used by default for covered-voxel intensity.
type Incandescent struct{}

// Gradient implements Gradienter.
func (Incandescent) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return blind.Sequential(blind.Incandescent, v)
}

// Slice is a z-plane snapshot of a working-time volume: Unvisited
// voxels are black, Masked voxels are transparent, and Covered
// voxels are shaded by Gradient against their stored time value
// normalized to the plane's observed range.
type Slice struct {
	Working  *volume.WorkingTime
	Z        int
	Gradient Gradienter

	maxTime float64
}

// NewSlice builds a slice renderer over plane z of w.
func NewSlice(w *volume.WorkingTime, z int) *Slice {
	s := &Slice{Working: w, Z: z, Gradient: Incandescent{}}
	nx, ny, _ := w.Shape()
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if t := w.Time(x, y, z); t > s.maxTime {
				s.maxTime = t
			}
		}
	}
	return s
}

// ColorModel implements image.Image.
func (s *Slice) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (s *Slice) Bounds() image.Rectangle {
	nx, ny, _ := s.Working.Shape()
	return image.Rect(0, 0, nx, ny)
}

// At implements image.Image.
func (s *Slice) At(x, y int) color.Color {
	switch s.Working.StateAt(x, y, s.Z) {
	case volume.Masked:
		return color.RGBA{}
	case volume.Covered:
		v := 0.0
		if s.maxTime > 0 {
			v = s.Working.Time(x, y, s.Z) / s.maxTime
		}
		return s.Gradient.Gradient(v)
	default:
		return color.RGBA{A: 255}
	}
}

// coveragePlot implements plot.Plotter over a trace run's coverage
// history.
type coveragePlot struct {
	points []traceloop.CoveragePoint
}

func (cp *coveragePlot) DataRange() (xMin, xMax, yMin, yMax float64) {
	if len(cp.points) == 0 {
		return 0, 1, 0, 1
	}
	xMax = float64(cp.points[len(cp.points)-1].Iteration)
	yMax = 1
	return 0, xMax, 0, yMax
}

func (cp *coveragePlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	c.SetLineStyle(plotter.DefaultLineStyle)
	var path vg.Path
	for i, p := range cp.points {
		x := trX(float64(p.Iteration))
		y := trY(p.Coverage)
		if i == 0 {
			path.Move(vg.Point{X: x, Y: y})
		} else {
			path.Line(vg.Point{X: x, Y: y})
		}
	}
	c.Stroke(path)
}

// CoveragePlot saves a line plot of coverage against iteration count
// to path as a PNG.
func CoveragePlot(history []traceloop.CoveragePoint, path string) error {
	p := plot.New()
	p.X.Label.Text = "episode"
	p.Y.Label.Text = "coverage"

	p.Add(&coveragePlot{points: history})
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("while saving coverage plot %q: %v", path, err)
	}
	return nil
}

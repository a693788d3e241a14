// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package gradient implements the precomputed, interpolated spatial
// gradient of a time-crossing map.
package gradient

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/rverr"
	"github.com/rivulet-trace/rivulet/volume"
)

// Field holds the three gradient components of a time map, each
// sampled once at every grid point (central differences in the
// interior, one-sided differences at the first and last index of each
// axis) and ready for trilinear interpolation at real-valued
// coordinates.
type Field struct {
	nx, ny, nz int
	gx, gy, gz []float64
}

// New computes the gradient field of tm. It fails with
// rverr.ErrDegenerateTimeMap when every component is zero everywhere
// (for example, a constant map), since such a field gives a branch
// tracer no usable direction to step in.
func New(tm *volume.TimeMap) (*Field, error) {
	nx, ny, nz := tm.Shape()
	f := &Field{
		nx: nx, ny: ny, nz: nz,
		gx: make([]float64, nx*ny*nz),
		gy: make([]float64, nx*ny*nz),
		gz: make([]float64, nx*ny*nz),
	}
	idx := func(x, y, z int) int { return (z*ny+y)*nx + x }

	var usable bool
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				i := idx(x, y, z)
				f.gx[i] = edgeDiff(tm.At(x, y, z), tm.At(clampIdx(x-1, nx), y, z), tm.At(clampIdx(x+1, nx), y, z), x, nx)
				f.gy[i] = edgeDiff(tm.At(x, y, z), tm.At(x, clampIdx(y-1, ny), z), tm.At(x, clampIdx(y+1, ny), z), y, ny)
				f.gz[i] = edgeDiff(tm.At(x, y, z), tm.At(x, y, clampIdx(z-1, nz)), tm.At(x, y, clampIdx(z+1, nz)), z, nz)
				if f.gx[i] != 0 || f.gy[i] != 0 || f.gz[i] != 0 {
					usable = true
				}
			}
		}
	}
	if !usable {
		return nil, rverr.ErrDegenerateTimeMap
	}
	return f, nil
}

// clampIdx clips a neighbor index into [0, n-1].
func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// edgeDiff is a central difference in the interior and a one-sided
// difference at the first or last index of an axis of length n.
func edgeDiff(center, prev, next float64, i, n int) float64 {
	if i == 0 {
		return next - center
	}
	if i == n-1 {
		return center - prev
	}
	return (next - prev) / 2
}

// Shape returns the (X, Y, Z) dimensions of the field.
func (f *Field) Shape() (int, int, int) { return f.nx, f.ny, f.nz }

// InBounds reports whether p falls within [0, shape-1] on every axis.
func (f *Field) InBounds(p r3.Vec) bool {
	return p.X >= 0 && p.X <= float64(f.nx-1) &&
		p.Y >= 0 && p.Y <= float64(f.ny-1) &&
		p.Z >= 0 && p.Z <= float64(f.nz-1)
}

// At trilinearly interpolates the gradient at real-valued point p. It
// fails with rverr.ErrOutOfBounds when p lies outside the field.
func (f *Field) At(p r3.Vec) (r3.Vec, error) {
	if !f.InBounds(p) {
		return r3.Vec{}, rverr.ErrOutOfBounds
	}
	gx := f.interp(f.gx, p)
	gy := f.interp(f.gy, p)
	gz := f.interp(f.gz, p)
	return r3.Vec{X: gx, Y: gy, Z: gz}, nil
}

func (f *Field) index(x, y, z int) int { return (z*f.ny+y)*f.nx + x }

func (f *Field) interp(data []float64, p r3.Vec) float64 {
	x0 := int(math.Floor(p.X))
	y0 := int(math.Floor(p.Y))
	z0 := int(math.Floor(p.Z))
	x1, y1, z1 := x0+1, y0+1, z0+1
	if x1 > f.nx-1 {
		x1 = f.nx - 1
	}
	if y1 > f.ny-1 {
		y1 = f.ny - 1
	}
	if z1 > f.nz-1 {
		z1 = f.nz - 1
	}

	fx := p.X - float64(x0)
	fy := p.Y - float64(y0)
	fz := p.Z - float64(z0)

	c000 := data[f.index(x0, y0, z0)]
	c100 := data[f.index(x1, y0, z0)]
	c010 := data[f.index(x0, y1, z0)]
	c110 := data[f.index(x1, y1, z0)]
	c001 := data[f.index(x0, y0, z1)]
	c101 := data[f.index(x1, y0, z1)]
	c011 := data[f.index(x0, y1, z1)]
	c111 := data[f.index(x1, y1, z1)]

	c00 := c000*(1-fx) + c100*fx
	c10 := c010*(1-fx) + c110*fx
	c01 := c001*(1-fx) + c101*fx
	c11 := c011*(1-fx) + c111*fx

	c0 := c00*(1-fy) + c10*fy
	c1 := c01*(1-fy) + c11*fy

	return c0*(1-fz) + c1*fz
}

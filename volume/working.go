// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package volume

import (
	"fmt"

	"github.com/rivulet-trace/rivulet/rverr"
)

// State is the tag a WorkingTime voxel carries, in place of the
// single-volume sentinel convention (numeric, -1, -2) described for
// this kind of map: a voxel's time and its state are kept in two
// parallel slices rather than folded into one float64.
type State uint8

const (
	// Unvisited is foreground not yet covered by any accepted branch.
	Unvisited State = iota
	// Covered is foreground swept by an accepted branch.
	Covered
	// Masked is background, or foreground excluded from seeding.
	Masked
)

// WorkingTime is the mutable copy of a TimeMap the trace loop walks
// down and erases as it commits branches. Background voxels start
// Masked; foreground voxels start Unvisited carrying the source time
// value.
type WorkingTime struct {
	nx, ny, nz int
	time       []float32
	state      []State
	foreground int
}

// NewWorkingTime builds a working copy of tm, masking every voxel
// where mask is not foreground. tm and mask must share a shape.
func NewWorkingTime(tm *TimeMap, mask *BinaryMask) (*WorkingTime, error) {
	nx, ny, nz := tm.Shape()
	mx, my, mz := mask.Shape()
	if nx != mx || ny != my || nz != mz {
		return nil, fmt.Errorf("working time: shape mismatch: time map (%d, %d, %d) vs mask (%d, %d, %d)", nx, ny, nz, mx, my, mz)
	}
	if mask.Count() == 0 {
		return nil, rverr.ErrEmptyForeground
	}

	w := &WorkingTime{
		nx:         nx,
		ny:         ny,
		nz:         nz,
		time:       make([]float32, nx*ny*nz),
		state:      make([]State, nx*ny*nz),
		foreground: mask.Count(),
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				i := w.index(x, y, z)
				if !mask.At(x, y, z) {
					w.state[i] = Masked
					continue
				}
				w.time[i] = float32(tm.At(x, y, z))
				w.state[i] = Unvisited
			}
		}
	}
	return w, nil
}

// Shape returns the (X, Y, Z) dimensions of the working time map.
func (w *WorkingTime) Shape() (int, int, int) { return w.nx, w.ny, w.nz }

// In reports whether (x, y, z) is a valid voxel coordinate.
func (w *WorkingTime) In(x, y, z int) bool {
	return x >= 0 && x < w.nx && y >= 0 && y < w.ny && z >= 0 && z < w.nz
}

func (w *WorkingTime) index(x, y, z int) int {
	return (z*w.ny+y)*w.nx + x
}

// Time returns the stored time value at (x, y, z), regardless of
// state.
func (w *WorkingTime) Time(x, y, z int) float64 {
	return float64(w.time[w.index(x, y, z)])
}

// StateAt returns the state tag at (x, y, z).
func (w *WorkingTime) StateAt(x, y, z int) State {
	return w.state[w.index(x, y, z)]
}

// Cover marks (x, y, z) as swept by an accepted branch. Covering is
// monotonic: once a voxel leaves Unvisited, neither Cover nor Mask
// changes its state again.
func (w *WorkingTime) Cover(x, y, z int) {
	i := w.index(x, y, z)
	if w.state[i] != Unvisited {
		return
	}
	w.state[i] = Covered
}

// Mask marks (x, y, z) as excluded from further seeding. Like Cover,
// it only takes effect on a still-Unvisited voxel.
func (w *WorkingTime) Mask(x, y, z int) {
	i := w.index(x, y, z)
	if w.state[i] != Unvisited {
		return
	}
	w.state[i] = Masked
}

// ArgMax scans every Unvisited voxel and returns the coordinate with
// the largest time value. ok is false when no Unvisited voxel remains,
// the loop's no-progress termination signal.
func (w *WorkingTime) ArgMax() (x, y, z int, t float64, ok bool) {
	best := float32(-1)
	found := false
	for iz := 0; iz < w.nz; iz++ {
		for iy := 0; iy < w.ny; iy++ {
			for ix := 0; ix < w.nx; ix++ {
				i := w.index(ix, iy, iz)
				if w.state[i] != Unvisited {
					continue
				}
				if !found || w.time[i] > best {
					best = w.time[i]
					x, y, z = ix, iy, iz
					found = true
				}
			}
		}
	}
	if !found {
		return 0, 0, 0, 0, false
	}
	return x, y, z, float64(best), true
}

// CoverageFraction returns the fraction of the volume's fixed
// foreground count that has left the Unvisited state, whether by
// being Covered or by being Masked out mid-run -- the progress metric
// the trace loop checks against its coverage target. The denominator
// is the foreground voxel count at construction, not the number of
// voxels that happen to remain non-Masked now.
func (w *WorkingTime) CoverageFraction() float64 {
	if w.foreground == 0 {
		return 1
	}
	unvisited := 0
	for _, s := range w.state {
		if s == Unvisited {
			unvisited++
		}
	}
	return float64(w.foreground-unvisited) / float64(w.foreground)
}

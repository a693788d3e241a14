// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package volume implements the 3D scalar and binary fields the tracer
// operates on: the binary foreground mask, the fast-marching time map
// produced upstream, and the tri-state working copy of the time map
// consumed and mutated by the trace loop.
package volume

import (
	"fmt"

	"github.com/rivulet-trace/rivulet/rverr"
)

// Volume is a 3D scalar field indexed by integer voxel coordinates
// (x, y, z) with shape (X, Y, Z). It stores its data in a single flat
// slice in z-major order.
type Volume struct {
	nx, ny, nz int
	data       []float64
}

// New creates a volume of the given shape, all values zero.
func New(nx, ny, nz int) *Volume {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic(fmt.Sprintf("volume: invalid shape (%d, %d, %d)", nx, ny, nz))
	}
	return &Volume{
		nx:   nx,
		ny:   ny,
		nz:   nz,
		data: make([]float64, nx*ny*nz),
	}
}

// Shape returns the (X, Y, Z) dimensions of the volume.
func (v *Volume) Shape() (int, int, int) { return v.nx, v.ny, v.nz }

// In reports whether (x, y, z) is a valid voxel coordinate.
func (v *Volume) In(x, y, z int) bool {
	return x >= 0 && x < v.nx && y >= 0 && y < v.ny && z >= 0 && z < v.nz
}

func (v *Volume) index(x, y, z int) int {
	return (z*v.ny+y)*v.nx + x
}

// At returns the value at (x, y, z). It panics if the coordinate is
// out of bounds; callers that must not panic should check In first.
func (v *Volume) At(x, y, z int) float64 {
	if !v.In(x, y, z) {
		panic(fmt.Sprintf("volume: index (%d, %d, %d) out of bounds for shape (%d, %d, %d)", x, y, z, v.nx, v.ny, v.nz))
	}
	return v.data[v.index(x, y, z)]
}

// Set assigns the value at (x, y, z).
func (v *Volume) Set(x, y, z int, val float64) {
	if !v.In(x, y, z) {
		panic(fmt.Sprintf("volume: index (%d, %d, %d) out of bounds for shape (%d, %d, %d)", x, y, z, v.nx, v.ny, v.nz))
	}
	v.data[v.index(x, y, z)] = val
}

// TryAt is the non-panicking form of At, returning rverr.ErrOutOfBounds
// when the coordinate is invalid.
func (v *Volume) TryAt(x, y, z int) (float64, error) {
	if !v.In(x, y, z) {
		return 0, fmt.Errorf("voxel (%d, %d, %d): %w", x, y, z, rverr.ErrOutOfBounds)
	}
	return v.data[v.index(x, y, z)], nil
}

// BinaryMask is a 3D field of foreground/background flags.
type BinaryMask struct {
	nx, ny, nz int
	data       []bool
}

// NewMask creates a mask of the given shape, all background.
func NewMask(nx, ny, nz int) *BinaryMask {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic(fmt.Sprintf("volume: invalid shape (%d, %d, %d)", nx, ny, nz))
	}
	return &BinaryMask{
		nx:   nx,
		ny:   ny,
		nz:   nz,
		data: make([]bool, nx*ny*nz),
	}
}

// Shape returns the (X, Y, Z) dimensions of the mask.
func (m *BinaryMask) Shape() (int, int, int) { return m.nx, m.ny, m.nz }

// In reports whether (x, y, z) is a valid voxel coordinate.
func (m *BinaryMask) In(x, y, z int) bool {
	return x >= 0 && x < m.nx && y >= 0 && y < m.ny && z >= 0 && z < m.nz
}

func (m *BinaryMask) index(x, y, z int) int {
	return (z*m.ny+y)*m.nx + x
}

// At reports whether (x, y, z) is foreground. Out-of-bounds
// coordinates are treated as background.
func (m *BinaryMask) At(x, y, z int) bool {
	if !m.In(x, y, z) {
		return false
	}
	return m.data[m.index(x, y, z)]
}

// Set assigns the foreground flag at (x, y, z).
func (m *BinaryMask) Set(x, y, z int, fg bool) {
	if !m.In(x, y, z) {
		panic(fmt.Sprintf("volume: index (%d, %d, %d) out of bounds for shape (%d, %d, %d)", x, y, z, m.nx, m.ny, m.nz))
	}
	m.data[m.index(x, y, z)] = fg
}

// Count returns the number of foreground voxels.
func (m *BinaryMask) Count() int {
	n := 0
	for _, fg := range m.data {
		if fg {
			n++
		}
	}
	return n
}

// TimeMap is a fast-marching time-crossing field: higher values mean
// geodesically farther from the soma inside the foreground. Values
// outside the foreground are unused by the tracer.
type TimeMap struct {
	Volume
}

// NewTimeMap creates a time map of the given shape, all zero.
func NewTimeMap(nx, ny, nz int) *TimeMap {
	return &TimeMap{Volume: *New(nx, ny, nz)}
}

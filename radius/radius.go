// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package radius implements the expanding-cube local radius estimate
// at a voxel of a binary mask.
package radius

import "github.com/rivulet-trace/rivulet/volume"

// threshold is the foreground-density floor: the cube radius stops
// growing once the foreground fraction of the (2r+1)^3 cube drops
// below this value.
const threshold = 0.6

// Estimate returns the local radius at voxel (x, y, z) of mask: the
// smallest r >= 1 such that the foreground fraction of the (2r+1)^3
// cube centered at the voxel (clipped to the mask's shape) falls
// below threshold. If the cube never drops below threshold before
// running off the mask, the last examined radius is returned. The
// minimum returned value is 1.
func Estimate(mask *volume.BinaryMask, x, y, z int) int {
	nx, ny, nz := mask.Shape()
	maxR := nx
	if ny > maxR {
		maxR = ny
	}
	if nz > maxR {
		maxR = nz
	}

	last := 1
	for r := 1; r <= maxR; r++ {
		x0, x1 := clip(x-r, 0, nx-1), clip(x+r, 0, nx-1)
		y0, y1 := clip(y-r, 0, ny-1), clip(y+r, 0, ny-1)
		z0, z1 := clip(z-r, 0, nz-1), clip(z+r, 0, nz-1)

		side := 2*r + 1
		denom := side * side * side

		sum := 0
		for iz := z0; iz <= z1; iz++ {
			for iy := y0; iy <= y1; iy++ {
				for ix := x0; ix <= x1; ix++ {
					if mask.At(ix, iy, iz) {
						sum++
					}
				}
			}
		}

		if float64(sum)/float64(denom) < threshold {
			return r
		}
		last = r
	}
	return last
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package erase implements sweeping the tube around a committed or
// rejected branch into the working time map, so the next episode
// picks a different seed.
package erase

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/volume"
)

// Sweep marks the voxels around branch (one point per radius entry)
// as covered in working. rejected selects the Rivulet-2 permanent-mask
// path (the branch was dropped for low confidence): those voxels are
// set Masked instead of Covered and will never be revisited.
//
// Rivulet-2 additionally restricts erasure to the time-value range
// between the branch's two ends when the branch is long enough and
// its tail's time is below its head's; Rivulet-1 always erases the
// whole swept cube.
func Sweep(working *volume.WorkingTime, variant policy.Variant, points []r3.Vec, radii []float64, eraseRatio float64, rejected bool) {
	if len(points) == 0 {
		return
	}
	nx, ny, nz := working.Shape()

	restrict := false
	var tLo, tHi float64
	if variant == policy.Rivulet2 && len(points) > 6 {
		x0, y0, z0 := floorCoord(points[0])
		x1, y1, z1 := floorCoord(points[len(points)-1])
		tStart := working.Time(clip(x0, 0, nx-1), clip(y0, 0, ny-1), clip(z0, 0, nz-1))
		tEnd := working.Time(clip(x1, 0, nx-1), clip(y1, 0, ny-1), clip(z1, 0, nz-1))
		if tEnd < tStart {
			restrict = true
			tLo, tHi = tEnd, tStart
		}
	}

	visited := make(map[[3]int]bool)
	for i, p := range points {
		r := radii[i]
		half := int(math.Ceil(r * eraseRatio))
		cx, cy, cz := floorCoord(p)

		x0, x1 := clip(cx-half, 0, nx-1), clip(cx+half, 0, nx-1)
		y0, y1 := clip(cy-half, 0, ny-1), clip(cy+half, 0, ny-1)
		z0, z1 := clip(cz-half, 0, nz-1), clip(cz+half, 0, nz-1)

		for z := z0; z <= z1; z++ {
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					key := [3]int{x, y, z}
					if visited[key] {
						continue
					}
					visited[key] = true

					if restrict {
						t := working.Time(x, y, z)
						if t < tLo || t > tHi {
							continue
						}
					}

					if rejected {
						working.Mask(x, y, z)
					} else {
						working.Cover(x, y, z)
					}
				}
			}
		}
	}
}

func floorCoord(p r3.Vec) (int, int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(p.Z))
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

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package speed builds the fast-marching speed image from a distance
// transform, and fits an adaptive low-speed threshold when the caller
// does not supply one explicitly.
package speed

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rivulet-trace/rivulet/volume"
)

// floor is the value substituted for any voxel at or below threshold,
// keeping the speed image strictly positive for the fast-marching
// step that consumes it.
const floor = 1e-10

// Make builds the speed image F = dt^4, clamping every voxel at or
// below threshold to floor. With a threshold of zero only voxels
// where F is exactly zero are clamped.
func Make(dt *volume.Volume, threshold float64) *volume.Volume {
	nx, ny, nz := dt.Shape()
	out := volume.New(nx, ny, nz)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v := dt.At(x, y, z)
				f := v * v * v * v
				if f <= threshold {
					f = floor
				}
				out.Set(x, y, z, f)
			}
		}
	}
	return out
}

// AdaptiveThreshold fits a Gamma distribution to the foreground
// distance-transform values by the method of moments and returns the
// value below which a voxel is treated as too thin to seed a branch:
// the quantile at the given tail probability.
func AdaptiveThreshold(dt *volume.Volume, mask *volume.BinaryMask, tail float64) float64 {
	nx, ny, nz := dt.Shape()
	var samples []float64
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if mask.At(x, y, z) {
					samples = append(samples, dt.At(x, y, z))
				}
			}
		}
	}
	if len(samples) == 0 {
		return 0
	}

	mean, variance := stat.MeanVariance(samples, nil)
	if variance <= 0 {
		return mean
	}
	alpha := mean * mean / variance
	beta := mean / variance
	g := distuv.Gamma{Alpha: alpha, Beta: beta}

	q := g.Quantile(tail)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package step implements the single-step RK4 integrator that walks a
// branch down the negated gradient of the time map.
package step

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/gradient"
	"github.com/rivulet-trace/rivulet/rverr"
)

// Integrator takes one step of length at most Size against a
// gradient field.
type Integrator struct {
	Field *gradient.Field
	// Size is the unit step length h.
	Size float64
}

// New creates an integrator over field with the given step size.
func New(field *gradient.Field, size float64) *Integrator {
	return &Integrator{Field: field, Size: size}
}

// RK4 advances p one step against the gradient using fourth-order
// Runge-Kutta. If any of the three sub-evaluation points falls
// outside the field, p is returned unchanged rather than an error --
// that is the guarded fallback the stepping loop relies on to detect
// an edge-of-volume stall. It fails with rverr.ErrOutOfBounds if p
// itself cannot be evaluated, and rverr.ErrGradientUnavailable if an
// in-bounds evaluation yields a non-finite gradient.
func (in *Integrator) RK4(p r3.Vec) (r3.Vec, error) {
	g1, err := in.ghat(p)
	if err != nil {
		return r3.Vec{}, err
	}
	k1 := r3.Scale(in.Size, g1)

	q2 := r3.Sub(p, r3.Scale(0.5, k1))
	if !in.Field.InBounds(q2) {
		return p, nil
	}
	g2, err := in.ghat(q2)
	if err != nil {
		return r3.Vec{}, err
	}
	k2 := r3.Scale(in.Size, g2)

	q3 := r3.Sub(p, r3.Scale(0.5, k2))
	if !in.Field.InBounds(q3) {
		return p, nil
	}
	g3, err := in.ghat(q3)
	if err != nil {
		return r3.Vec{}, err
	}
	k3 := r3.Scale(in.Size, g3)

	q4 := r3.Sub(p, k3)
	if !in.Field.InBounds(q4) {
		return p, nil
	}
	g4, err := in.ghat(q4)
	if err != nil {
		return r3.Vec{}, err
	}
	k4 := r3.Scale(in.Size, g4)

	sum := r3.Add(k1, r3.Add(r3.Scale(2, k2), r3.Add(r3.Scale(2, k3), k4)))
	return r3.Sub(p, r3.Scale(1.0/6.0, sum)), nil
}

// ghat is the magnitude-clamped unit gradient: dividing by
// max(norm, 1) instead of norm bounds the step length by h while
// still allowing sub-unit steps where the gradient is weak. The
// walk moves against the gradient overall because RK4 subtracts
// the weighted increment sum from p, not because ghat is negated
// here.
func (in *Integrator) ghat(q r3.Vec) (r3.Vec, error) {
	g, err := in.Field.At(q)
	if err != nil {
		return r3.Vec{}, err
	}
	if !finite(g) {
		return r3.Vec{}, rverr.ErrGradientUnavailable
	}
	n := r3.Norm(g)
	if n < 1 {
		n = 1
	}
	return r3.Scale(1/n, g), nil
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

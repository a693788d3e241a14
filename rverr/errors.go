// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rverr defines the sentinel errors shared by the tracing
// pipeline, so callers can test for them with errors.Is instead of
// string matching.
package rverr

import "errors"

// ErrOutOfBounds is returned when a voxel or real-valued coordinate
// falls outside the shape of a volume.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// ErrDegenerateTimeMap is returned when a time-crossing map has no
// usable gradient anywhere (for example, a constant map), leaving a
// branch tracer no direction to step in.
var ErrDegenerateTimeMap = errors.New("degenerate time map")

// ErrEmptyForeground is returned when a binary mask has no foreground
// voxels at all.
var ErrEmptyForeground = errors.New("empty foreground")

// ErrGradientUnavailable is returned by the step integrator when the
// gradient cannot be sampled at an in-bounds point (a non-finite
// interpolated value).
var ErrGradientUnavailable = errors.New("gradient unavailable")

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package branch implements one back-tracking episode: stepping down
// the gradient of the time map from the current furthest point until
// it reaches the soma, reaches already-traced tissue, or meets one of
// several stopping criteria, with the stepping core shared between
// the Rivulet-1 and Rivulet-2 policies.
package branch

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/radius"
	"github.com/rivulet-trace/rivulet/step"
	"github.com/rivulet-trace/rivulet/volume"
)

// StopReason is why an episode's step loop ended.
type StopReason int

const (
	// ReachedSoma means the branch walked within 1.2*radius of the soma.
	ReachedSoma StopReason = iota
	// Touched means the branch matched an existing tree node.
	Touched
	// TouchedTimeout means the branch kept walking through already-
	// traced tissue without matching a node (Rivulet-2 only).
	TouchedTimeout
	// ReachedUnmatched means a Rivulet-1 branch reached already-traced
	// tissue on its first such step without matching a tree node.
	ReachedUnmatched
	// NotMoving means the branch stalled in place.
	NotMoving
	// ValueError means the gradient could not be evaluated.
	ValueError
	// OutOfBound means the branch walked outside the volume.
	OutOfBound
	// NoTree means the branch reached traced tissue before any node
	// existed to attach to.
	NoTree
	// GapExceeded means a Rivulet-1 branch crossed too long a
	// background run.
	GapExceeded
	// LowConfidence means a Rivulet-2 branch's online confidence
	// dropped below threshold; it is erased but never committed.
	LowConfidence
)

// String names a stop reason.
func (s StopReason) String() string {
	switch s {
	case ReachedSoma:
		return "reached_soma"
	case Touched:
		return "touched"
	case TouchedTimeout:
		return "touched_timeout"
	case ReachedUnmatched:
		return "reached_unmatched"
	case NotMoving:
		return "not_moving"
	case ValueError:
		return "value_error"
	case OutOfBound:
		return "out_of_bound"
	case NoTree:
		return "no_tree"
	case GapExceeded:
		return "gap_exceeded"
	case LowConfidence:
		return "low_confidence"
	default:
		return "unknown"
	}
}

// ConnectKind is the kind of attachment point a branch's tail names.
type ConnectKind int

const (
	// ConnectUnresolved means the tail has no known parent yet.
	ConnectUnresolved ConnectKind = iota
	// ConnectSoma means the tail attaches to the soma.
	ConnectSoma
	// ConnectNode means the tail attaches to an existing tree node.
	ConnectNode
)

// ConnectHint names what a branch's tail should attach to.
type ConnectHint struct {
	Kind   ConnectKind
	NodeID int
}

// NearestNode is the read-only view of a tree a branch tracer needs to
// test tree attachment without importing the tree package itself.
type NearestNode interface {
	// Len returns the number of nodes currently in the tree.
	Len() int
	// Nearest returns the id, position, and radius of the tree node
	// closest to p. ok is false when the tree is empty.
	Nearest(p r3.Vec) (id int, pos r3.Vec, nodeRadius float64, ok bool)
}

// Config carries the parameters that distinguish a Rivulet-1 from a
// Rivulet-2 episode. The stepping core above is shared; only the
// predicates these fields drive differ.
type Config struct {
	Variant policy.Variant

	// MinLength is the Rivulet-1 momentum-nudge length threshold.
	MinLength int

	// Gap is the Rivulet-1 background-run tolerance before GapExceeded.
	Gap int

	// Wiring is the Rivulet-1 attachment slack.
	Wiring float64

	// Step is the RK4 step size, conventionally 1.
	Step float64
}

// Result is the outcome of one episode.
type Result struct {
	Points          []r3.Vec
	Radii           []float64
	Foreground      []bool
	Stop            StopReason
	Hint            ConnectHint
	ForwardConf     []float64
	ForegroundCount int
}

const (
	somaReachFactor  = 1.2
	momentumDistance = 0.5
	momentumFallback = 6
	stallWindow      = 15
	stallDistance    = 1.0
	lowConfThreshold = 0.25
	touchedTimeout   = 100
)

// Trace runs one episode starting at the current furthest point of
// working and returns its polyline, radii, and stop condition.
func Trace(cfg Config, integ *step.Integrator, mask *volume.BinaryMask, working *volume.WorkingTime, tree NearestNode, soma r3.Vec, somaRadius float64) Result {
	sx, sy, sz, _, ok := working.ArgMax()
	if !ok {
		return Result{Stop: NoTree}
	}
	src := r3.Vec{X: float64(sx), Y: float64(sy), Z: float64(sz)}

	branchPts := []r3.Vec{src}
	var onlineVoxSum int
	var fgCount int
	if mask.At(sx, sy, sz) {
		fgCount++
	}

	var reached bool
	var stepsAfterReach int
	var gapctr int
	stop := StopReason(-1)
	hint := ConnectHint{Kind: ConnectUnresolved}

	for {
		end, err := integ.RK4(src)
		if err != nil {
			stop = ValueError
			break
		}

		ex, ey, ez := floorCoord(end)
		fg := mask.At(ex, ey, ez)
		if fg {
			onlineVoxSum++
		}
		onlineConf := float64(onlineVoxSum) / float64(len(branchPts)+1)

		if r3.Norm(r3.Sub(soma, end)) < somaReachFactor*somaRadius {
			stop = ReachedSoma
			break
		}

		if working.In(ex, ey, ez) && working.StateAt(ex, ey, ez) == volume.Covered {
			reached = true
		}
		if reached {
			if tree.Len() == 0 {
				stop = NoTree
				break
			}
			stepsAfterReach++
			endRadius := float64(radius.Estimate(mask, ex, ey, ez))
			touched, id := matchTree(tree, end, endRadius, cfg.Variant, cfg.Wiring)
			if touched {
				stop = Touched
				hint = ConnectHint{Kind: ConnectNode, NodeID: id}
				break
			}
			if cfg.Variant == policy.Rivulet1 {
				stop = ReachedUnmatched
				break
			}
			if stepsAfterReach >= touchedTimeout {
				stop = TouchedTimeout
				break
			}
		}

		momentumLen := momentumFallback
		if cfg.Variant == policy.Rivulet1 {
			momentumLen = cfg.MinLength
		}
		if r3.Norm(r3.Sub(end, src)) <= momentumDistance && len(branchPts) >= momentumLen && len(branchPts) >= 4 {
			end = r3.Add(src, r3.Sub(branchPts[len(branchPts)-1], branchPts[len(branchPts)-4]))
			ex, ey, ez = floorCoord(end)
		}

		if len(branchPts) > stallWindow {
			prev := branchPts[len(branchPts)-stallWindow]
			if r3.Norm(r3.Sub(prev, end)) < stallDistance {
				stop = NotMoving
				break
			}
		}

		if cfg.Variant == policy.Rivulet2 && onlineConf < lowConfThreshold {
			stop = LowConfidence
			break
		}

		if cfg.Variant == policy.Rivulet1 {
			if fg {
				gapctr = 0
			} else {
				gapctr++
			}
			if gapctr > cfg.Gap {
				stop = GapExceeded
				break
			}
		}

		if !integ.Field.InBounds(end) {
			stop = OutOfBound
			break
		}

		branchPts = append(branchPts, end)
		if fg {
			fgCount++
		}
		src = end
	}

	switch stop {
	case ReachedSoma:
		hint = ConnectHint{Kind: ConnectSoma}
	case TouchedTimeout, NoTree, GapExceeded, ReachedUnmatched, OutOfBound:
		hint = ConnectHint{Kind: ConnectUnresolved}
	}

	radii := make([]float64, len(branchPts))
	foreground := make([]bool, len(branchPts))
	forwardConf := make([]float64, len(branchPts))
	fgRunning := 0
	for i, p := range branchPts {
		x, y, z := floorCoord(p)
		r := radius.Estimate(mask, x, y, z)
		if r < 1 {
			r = 1
		}
		radii[i] = float64(r)

		foreground[i] = mask.At(x, y, z)
		forwardConf[i] = float64(fgRunning) / float64(i+1)
		if foreground[i] {
			fgRunning++
		}
	}

	return Result{
		Points:          branchPts,
		Radii:           radii,
		Foreground:      foreground,
		Stop:            stop,
		Hint:            hint,
		ForwardConf:     forwardConf,
		ForegroundCount: fgCount,
	}
}

func matchTree(tree NearestNode, p r3.Vec, queryRadius float64, variant policy.Variant, wiring float64) (touched bool, id int) {
	nodeID, pos, nodeRadius, ok := tree.Nearest(p)
	if !ok {
		return false, -2
	}
	d := r3.Norm(r3.Sub(p, pos))
	return policy.Matches(variant, wiring, d, nodeRadius, queryRadius), nodeID
}

func floorCoord(p r3.Vec) (int, int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(p.Z))
}

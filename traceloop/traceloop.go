// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package traceloop drives the episode loop: it seeds each episode
// from the current furthest unvisited voxel, runs one branch, erases
// its territory, and commits it to the tree, until the coverage
// target is reached or no progress remains.
package traceloop

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/branch"
	"github.com/rivulet-trace/rivulet/checkpoint"
	"github.com/rivulet-trace/rivulet/erase"
	"github.com/rivulet-trace/rivulet/gradient"
	"github.com/rivulet-trace/rivulet/morphotree"
	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/rverr"
	"github.com/rivulet-trace/rivulet/step"
	"github.com/rivulet-trace/rivulet/volume"
)

// r1CommitFraction is the minimum fraction of foreground samples
// along a Rivulet-1 branch required to commit it.
const r1CommitFraction = 0.3

// r2CommitConfidence is the minimum tail forward confidence required
// to commit a Rivulet-2 branch.
const r2CommitConfidence = 0.5

// Config holds the parameters of one trace run.
type Config struct {
	Variant    policy.Variant
	Coverage   float64
	MinLength  int
	Gap        int
	Wiring     float64
	EraseRatio float64
	StepSize   float64
	Render     bool
	Silence    bool
}

// CoveragePoint is one sample of the coverage-vs-iteration curve
// collected when Config.Render is set.
type CoveragePoint struct {
	Iteration int
	Coverage  float64
}

// Result is the outcome of a full trace run, before post-processing.
type Result struct {
	Tree     *morphotree.Tree
	Coverage []CoveragePoint
}

// Run drives episodes against mask and tm until cfg.Coverage is
// reached or the working map reports no progress. Progress lines are
// written to log unless Config.Silence is set.
func Run(cfg Config, mask *volume.BinaryMask, tm *volume.TimeMap, soma r3.Vec, somaRadius float64, log io.Writer) (Result, error) {
	working, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		if errors.Is(err, rverr.ErrEmptyForeground) {
			tree := morphotree.New(cfg.Variant, cfg.Wiring)
			tree.PrependSoma(soma, somaRadius)
			return Result{Tree: tree}, nil
		}
		return Result{Tree: morphotree.New(cfg.Variant, cfg.Wiring)}, err
	}

	field, err := gradient.New(tm)
	if err != nil {
		return Result{Tree: morphotree.New(cfg.Variant, cfg.Wiring)}, err
	}
	integ := step.New(field, cfg.StepSize)
	tree := morphotree.New(cfg.Variant, cfg.Wiring)

	bcfg := branch.Config{
		Variant:   cfg.Variant,
		MinLength: cfg.MinLength,
		Gap:       cfg.Gap,
		Wiring:    cfg.Wiring,
		Step:      cfg.StepSize,
	}

	tracker := checkpoint.NewTracker(checkpoint.Default())

	var history []CoveragePoint
	iteration := 0
	for {
		coverage := working.CoverageFraction()
		if cfg.Render {
			history = append(history, CoveragePoint{Iteration: iteration, Coverage: coverage})
		}
		if crossed, ok := tracker.Observe(coverage); ok && !cfg.Silence && log != nil {
			fmt.Fprintf(log, "iteration %d: crossed coverage checkpoint %.2f (at %.4f)\n", iteration, crossed, coverage)
		}
		if coverage >= cfg.Coverage {
			break
		}

		if _, _, _, _, ok := working.ArgMax(); !ok {
			break
		}

		result := branch.Trace(bcfg, integ, mask, working, tree, soma, somaRadius)
		lowConf := result.Stop == branch.LowConfidence
		erase.Sweep(working, cfg.Variant, result.Points, result.Radii, cfg.EraseRatio, lowConf)

		if !lowConf && len(result.Points) > 0 {
			commit := false
			if cfg.Variant == policy.Rivulet2 {
				commit = result.ForwardConf[len(result.ForwardConf)-1] >= r2CommitConfidence
			} else {
				commit = float64(result.ForegroundCount)/float64(len(result.Points)) >= r1CommitFraction
			}
			if commit {
				tree.AddBranch(result.Points, result.Radii, result.Foreground, result.Stop, result.Hint)
			}
		}

		iteration++
	}

	return Result{Tree: tree, Coverage: history}, nil
}

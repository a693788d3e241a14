// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Rivultrace runs one full trace episode loop against a small
// synthesized volume and writes the resulting tree in its
// text form. It exercises the tracing pipeline end to end; it is not
// the reconstruction tool (no image loading, no interactive flags).
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/config"
	"github.com/rivulet-trace/rivulet/morphtext"
	"github.com/rivulet-trace/rivulet/postprocess"
	"github.com/rivulet-trace/rivulet/render"
	"github.com/rivulet-trace/rivulet/traceloop"
	"github.com/rivulet-trace/rivulet/volume"
)

func main() {
	cfgFile := flag.String("config", "", "trace configuration file (TSV); defaults if omitted")
	out := flag.String("out", "", "output tree file; stdout if omitted")
	plot := flag.String("plot", "", "coverage plot PNG file; skipped if omitted")
	side := flag.Int("side", 30, "side length of the synthesized fixture volume")
	flag.Parse()

	if err := run(*cfgFile, *out, *plot, *side); err != nil {
		fmt.Fprintf(os.Stderr, "rivultrace: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile, out, plotPath string, side int) error {
	cfg := config.New("")
	if cfgFile != "" {
		c, err := config.Read(cfgFile)
		if err != nil {
			return fmt.Errorf("while reading config: %v", err)
		}
		cfg = c
	}

	mask, tm, soma, somaRadius := straightTubeFixture(side)

	tc := traceloop.Config{
		Variant:    cfg.Variant(),
		Coverage:   cfg.Coverage(),
		MinLength:  cfg.MinLength(),
		Gap:        cfg.Gap(),
		Wiring:     cfg.Wiring(),
		EraseRatio: cfg.EraseRatio(),
		StepSize:   1,
		Render:     plotPath != "" || cfg.Render(),
		Silence:    cfg.Silence(),
	}

	res, err := traceloop.Run(tc, mask, tm, soma, somaRadius, os.Stderr)
	if err != nil {
		return fmt.Errorf("while tracing: %v", err)
	}

	tree := postprocess.Run(res.Tree, cfg.MinLength(), soma, somaRadius)

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("while creating %q: %v", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := morphtext.Write(w, tree); err != nil {
		return fmt.Errorf("while writing tree: %v", err)
	}

	if plotPath != "" {
		if err := render.CoveragePlot(res.Coverage, plotPath); err != nil {
			return fmt.Errorf("while writing coverage plot: %v", err)
		}
	}
	return nil
}

// straightTubeFixture builds a minimal synthetic foreground: a single
// straight tube running the length of a cubic volume, centered in y
// and z, with the soma at one end.
func straightTubeFixture(side int) (*volume.BinaryMask, *volume.TimeMap, r3.Vec, float64) {
	mask := volume.NewMask(side, side, side)
	tm := volume.NewTimeMap(side, side, side)
	mid := side / 2
	for x := 0; x < side; x++ {
		mask.Set(x, mid, mid, true)
		tm.Set(x, mid, mid, float64(x))
	}
	soma := r3.Vec{X: 0, Y: float64(mid), Z: float64(mid)}
	return mask, tm, soma, 1.5
}

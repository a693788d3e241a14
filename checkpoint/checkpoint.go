// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package checkpoint implements a set of coverage checkpoints: the
// coverage fractions at which a trace run should emit a progress
// line, instead of logging every single episode.
package checkpoint

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Checkpoints is a set of coverage fractions in [0, 1].
type Checkpoints map[float64]bool

// New returns an empty set of checkpoints.
func New() Checkpoints {
	return Checkpoints(make(map[float64]bool))
}

// Default returns the standard checkpoint ladder: every tenth of
// coverage plus the 0.98 target itself.
func Default() Checkpoints {
	c := New()
	for i := 1; i <= 10; i++ {
		c.Add(float64(i) / 10)
	}
	c.Add(0.98)
	return c
}

// Add adds a checkpoint fraction.
func (c Checkpoints) Add(frac float64) {
	c[frac] = true
}

// Sorted returns the checkpoint fractions in ascending order.
func (c Checkpoints) Sorted() []float64 {
	fs := make([]float64, 0, len(c))
	for f := range c {
		fs = append(fs, f)
	}
	slices.Sort(fs)
	return fs
}

// Next returns the smallest checkpoint strictly greater than
// reached, and whether one exists.
func (c Checkpoints) Next(reached float64) (float64, bool) {
	for _, f := range c.Sorted() {
		if f > reached {
			return f, true
		}
	}
	return 0, false
}

// Read reads checkpoint fractions from a header-less TSV file, one
// fraction per line.
//
//	# coverage checkpoints
//	0.100000
//	0.500000
//	0.980000
func Read(r io.Reader) (Checkpoints, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	c := New()
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on line %d: %v", ln, err)
		}

		s := strings.TrimSpace(row[0])
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: read %q: %v", ln, s, err)
		}
		c.Add(f)
	}
	return c, nil
}

// Write writes the checkpoint set to a tab-delimited file.
func (c Checkpoints) Write(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# coverage checkpoints\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	for _, f := range c.Sorted() {
		row := []string{strconv.FormatFloat(f, 'f', 6, 64)}
		if err := tsv.Write(row); err != nil {
			return err
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return bw.Flush()
}

// Tracker walks through a checkpoint set in order, reporting whether
// newly observed coverage has crossed into a fresh checkpoint.
type Tracker struct {
	points  []float64
	next    int
	reached float64
}

// NewTracker creates a tracker over the given checkpoint set.
func NewTracker(c Checkpoints) *Tracker {
	return &Tracker{points: c.Sorted()}
}

// Observe records a new coverage reading and returns the checkpoint
// just crossed, if any, and whether one was crossed.
func (t *Tracker) Observe(coverage float64) (float64, bool) {
	t.reached = coverage
	if t.next >= len(t.points) {
		return 0, false
	}
	if coverage < t.points[t.next] {
		return 0, false
	}
	crossed := t.points[t.next]
	t.next++
	for t.next < len(t.points) && t.points[t.next] <= coverage {
		crossed = t.points[t.next]
		t.next++
	}
	return crossed, true
}

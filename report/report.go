// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package report implements a tally of branch stop reasons over a
// trace run, written as a TSV file for post-hoc inspection.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rivulet-trace/rivulet/branch"
)

// Tally counts how many episodes ended with each stop reason, split
// by whether the branch was ultimately committed.
type Tally struct {
	counts    map[branch.StopReason]int
	committed map[branch.StopReason]int
}

// New creates an empty tally.
func New() *Tally {
	return &Tally{
		counts:    make(map[branch.StopReason]int),
		committed: make(map[branch.StopReason]int),
	}
}

// Add records one episode's outcome.
func (t *Tally) Add(stop branch.StopReason, committed bool) {
	t.counts[stop]++
	if committed {
		t.committed[stop]++
	}
}

// Count returns how many episodes ended with the given stop reason.
func (t *Tally) Count(stop branch.StopReason) int {
	return t.counts[stop]
}

// Committed returns how many of those episodes were committed.
func (t *Tally) Committed(stop branch.StopReason) int {
	return t.committed[stop]
}

var header = []string{
	"stop_reason",
	"episodes",
	"committed",
}

// TSV writes the tally to a TSV file, stop reasons sorted by name.
func (t *Tally) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	var reasons []branch.StopReason
	for r := range t.counts {
		reasons = append(reasons, r)
	}
	slices.SortFunc(reasons, func(a, b branch.StopReason) int {
		return strings.Compare(a.String(), b.String())
	})

	for _, r := range reasons {
		row := []string{
			r.String(),
			strconv.Itoa(t.counts[r]),
			strconv.Itoa(t.committed[r]),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

var reasonByName = map[string]branch.StopReason{
	branch.ReachedSoma.String():     branch.ReachedSoma,
	branch.Touched.String():         branch.Touched,
	branch.TouchedTimeout.String():  branch.TouchedTimeout,
	branch.ReachedUnmatched.String(): branch.ReachedUnmatched,
	branch.NotMoving.String():       branch.NotMoving,
	branch.ValueError.String():      branch.ValueError,
	branch.OutOfBound.String():      branch.OutOfBound,
	branch.NoTree.String():          branch.NoTree,
	branch.GapExceeded.String():     branch.GapExceeded,
	branch.LowConfidence.String():   branch.LowConfidence,
}

// ReadTSV reads a tally from a TSV file in the format written by TSV.
func ReadTSV(r io.Reader) (*Tally, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	t := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		reason, ok := reasonByName[row[fields["stop_reason"]]]
		if !ok {
			return nil, fmt.Errorf("on row %d: unknown stop reason %q", ln, row[fields["stop_reason"]])
		}
		episodes, err := strconv.Atoi(row[fields["episodes"]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "episodes", err)
		}
		committed, err := strconv.Atoi(row[fields["committed"]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "committed", err)
		}
		t.counts[reason] = episodes
		t.committed[reason] = committed
	}
	return t, nil
}

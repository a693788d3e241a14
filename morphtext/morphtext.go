// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package morphtext implements the canonical seven-column text form
// of a reconstructed tree: one node per line, fields separated by
// whitespace, in (id, type, x, y, z, radius, parent_id) order.
package morphtext

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/morphotree"
	"github.com/rivulet-trace/rivulet/policy"
)

// Write encodes tree's nodes, soma first, one per line.
func Write(w io.Writer, tree *morphotree.Tree) error {
	bw := bufio.NewWriter(w)
	for _, n := range tree.Nodes() {
		_, err := fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n",
			n.ID,
			n.Type,
			strconv.FormatFloat(n.Pos.X, 'g', -1, 64),
			strconv.FormatFloat(n.Pos.Y, 'g', -1, 64),
			strconv.FormatFloat(n.Pos.Z, 'g', -1, 64),
			strconv.FormatFloat(n.Radius, 'g', -1, 64),
			n.ParentID,
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read decodes a tree from its seven-column text form. The resulting
// tree carries the given variant and wiring slack, since neither is
// recoverable from the text form itself.
func Read(r io.Reader, variant policy.Variant, wiring float64) (*morphotree.Tree, error) {
	tree := morphotree.New(variant, wiring)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 7 {
			return nil, fmt.Errorf("on line %d: found %d fields, want 7", line, len(fields))
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 1 (id): %v", line, err)
		}
		typ, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 2 (type): %v", line, err)
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 3 (x): %v", line, err)
		}
		y, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 4 (y): %v", line, err)
		}
		z, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 5 (z): %v", line, err)
		}
		radius, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 6 (radius): %v", line, err)
		}
		parentID, err := strconv.Atoi(fields[6])
		if err != nil {
			return nil, fmt.Errorf("on line %d: field 7 (parent_id): %v", line, err)
		}

		tree.AppendRaw(morphotree.Node{
			ID:       id,
			Type:     typ,
			Pos:      r3.Vec{X: x, Y: y, Z: z},
			Radius:   radius,
			ParentID: parentID,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("while scanning: %v", err)
	}
	return tree, nil
}

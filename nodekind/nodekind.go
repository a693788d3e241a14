// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nodekind implements a color key for the reconstructed
// tree's node type codes.
package nodekind

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/blind"

	"github.com/rivulet-trace/rivulet/morphotree"
)

// Key stores the color associated with each node type code.
type Key struct {
	color map[int]color.Color
}

// Default returns the built-in key, spacing the known type codes
// evenly over the colorblind-safe rainbow scheme.
func Default() *Key {
	codes := []int{
		morphotree.TypeSoma,
		morphotree.TypeDendrite,
		morphotree.TypeFork,
		morphotree.TypeEndpoint,
		morphotree.TypeStalled,
		morphotree.TypeInvalid,
	}
	k := &Key{color: make(map[int]color.Color, len(codes))}
	for i, c := range codes {
		v := float64(i) / float64(len(codes)-1)
		k.color[c] = blind.Sequential(blind.RainbowPurpleToRed, v)
	}
	return k
}

// Color returns the color for a node type code. Unknown codes return
// opaque gray.
func (k *Key) Color(typ int) color.Color {
	if c, ok := k.color[typ]; ok {
		return c
	}
	return color.RGBA{128, 128, 128, 255}
}

// Read reads a key file overriding the default colors. A key file is
// a tab-delimited file with required columns "type" (a node type
// code) and "color" (an RGB triple, for example "125,132,148").
func Read(name string) (*Key, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.Comment = '#'

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range []string{"type", "color"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	k := Default()
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := r.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		typ, err := strconv.Atoi(row[fields["type"]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, "type", err)
		}

		val := strings.Split(row[fields["color"]], ",")
		if len(val) != 3 {
			return nil, fmt.Errorf("on row %d: field %q: found %d values, want 3", ln, "color", len(val))
		}
		rgb := make([]uint8, 3)
		for i, s := range val {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n > 255 {
				return nil, fmt.Errorf("on row %d: field %q: invalid value %q", ln, "color", s)
			}
			rgb[i] = uint8(n)
		}
		k.color[typ] = color.RGBA{rgb[0], rgb[1], rgb[2], 255}
	}
	return k, nil
}

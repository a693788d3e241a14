// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dataset implements reading and writing of a trace run's
// manifest file: the set of input/output paths one reconstruction
// job needs, kept together so a run can be replayed from a single
// file.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// File is a keyword identifying the kind of file a manifest entry
// points to.
type File string

// Valid file kinds.
const (
	// BinaryMask is the 3D foreground segmentation.
	BinaryMask File = "mask"

	// TimeMap is the fast-marching time-crossing field.
	TimeMap File = "timemap"

	// Soma is the soma position and radius.
	Soma File = "soma"

	// Tree is the output morphology in the seven-column text form.
	Tree File = "tree"

	// Report is the per-run stop-reason tally.
	Report File = "report"

	// Coverage is the rendered coverage-vs-iteration plot.
	Coverage File = "coverage"

	// NodeKey is a node-type color key override.
	NodeKey File = "nodekey"
)

// A Manifest is a collection of paths for a trace run's files.
type Manifest struct {
	name  string
	paths map[File]string
}

// New creates a new empty manifest.
func New() *Manifest {
	return &Manifest{paths: make(map[File]string)}
}

var header = []string{
	"file",
	"path",
}

// Read reads a manifest from a tab-delimited file with required
// columns "file" (the file kind) and "path".
//
// Here is an example file:
//
//	# rivulet trace manifest
//	file	path
//	mask	seg-mask.tif
//	timemap	seg-time.tab
//	soma	seg-soma.tab
//	tree	seg-tree.swc
func Read(name string) (*Manifest, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	m := New()
	m.name = name
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}
		m.paths[File(row[fields["file"]])] = row[fields["path"]]
	}
	return m, nil
}

// Add sets the path of a file kind, returning its previous value. An
// empty path deletes the entry.
func (m *Manifest) Add(kind File, path string) string {
	prev := m.paths[kind]
	if path == "" {
		delete(m.paths, kind)
		return prev
	}
	m.paths[kind] = path
	return prev
}

// Path returns the path set for a file kind.
func (m *Manifest) Path(kind File) string {
	return m.paths[kind]
}

// Kinds returns the file kinds defined in the manifest, sorted.
func (m *Manifest) Kinds() []File {
	var ks []File
	for k := range m.paths {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// SetName sets the manifest file name used by Write.
func (m *Manifest) SetName(name string) {
	m.name = name
}

// Write writes the manifest to its file name.
func (m *Manifest) Write() (err error) {
	f, err := os.Create(m.name)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# rivulet trace manifest\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", m.name, err)
	}
	for _, k := range m.Kinds() {
		row := []string{string(k), m.paths[k]}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", m.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", m.name, err)
	}
	return bw.Flush()
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package config implements reading and writing of a trace run's
// parameter file.
package config

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rivulet-trace/rivulet/policy"
)

// Param is a keyword identifying a configuration parameter.
type Param string

// Valid parameters.
const (
	Variant    Param = "variant"
	Coverage   Param = "coverage"
	MinLength  Param = "min_length"
	Gap        Param = "gap"
	Wiring     Param = "wiring"
	EraseRatio Param = "erase_ratio"
	Render     Param = "render"
	Silence    Param = "silence"
)

// Config is a collection of trace run parameters.
type Config struct {
	name string

	variant    policy.Variant
	coverage   float64
	minLength  int
	gap        int
	wiring     float64
	eraseRatio float64
	render     bool
	silence    bool
}

// New creates a config with the default parameter values.
func New(name string) *Config {
	return &Config{
		name:       name,
		variant:    policy.Rivulet2,
		coverage:   0.98,
		minLength:  6,
		gap:        8,
		wiring:     1.5,
		eraseRatio: 1.1,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a config file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# rivulet trace configuration
//	parameter	value
//	variant	r2
//	coverage	0.98
//	min_length	6
//	erase_ratio	1.1
func Read(name string) (*Config, error) {
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

	c := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		p := Param(strings.ToLower(row[fields["parameter"]]))
		v := row[fields["value"]]

		switch p {
		case Variant:
			switch strings.ToLower(v) {
			case "r1", "rivulet1":
				c.variant = policy.Rivulet1
			case "r2", "rivulet2":
				c.variant = policy.Rivulet2
			default:
				return nil, fmt.Errorf("on file %q: on row %d: unknown variant %q", name, ln, v)
			}
		case Coverage:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, p, err)
			}
			c.coverage = f
		case MinLength:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, p, err)
			}
			c.minLength = n
		case Gap:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, p, err)
			}
			c.gap = n
		case Wiring:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, p, err)
			}
			c.wiring = f
		case EraseRatio:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, p, err)
			}
			c.eraseRatio = f
		case Render:
			c.render = strings.EqualFold(v, "true")
		case Silence:
			c.silence = strings.EqualFold(v, "true")
		}
	}
	return c, nil
}

// Variant returns the tracing policy variant.
func (c *Config) Variant() policy.Variant { return c.variant }

// Coverage returns the target coverage fraction.
func (c *Config) Coverage() float64 { return c.coverage }

// MinLength returns the minimum committed branch length.
func (c *Config) MinLength() int { return c.minLength }

// Gap returns the Rivulet-1 background-run tolerance.
func (c *Config) Gap() int { return c.gap }

// Wiring returns the Rivulet-1 attachment slack.
func (c *Config) Wiring() float64 { return c.wiring }

// EraseRatio returns the tube erasure radius multiplier.
func (c *Config) EraseRatio() float64 { return c.eraseRatio }

// Render reports whether a coverage plot should be produced.
func (c *Config) Render() bool { return c.render }

// Silence reports whether progress logging is suppressed.
func (c *Config) Silence() bool { return c.silence }

// SetVariant sets the tracing policy variant.
func (c *Config) SetVariant(v policy.Variant) { c.variant = v }

// SetCoverage sets the target coverage fraction.
func (c *Config) SetCoverage(v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("invalid coverage value: %v", v)
	}
	c.coverage = v
	return nil
}

// SetMinLength sets the minimum committed branch length.
func (c *Config) SetMinLength(v int) error {
	if v < 1 {
		return fmt.Errorf("invalid min_length value: %d", v)
	}
	c.minLength = v
	return nil
}

// SetGap sets the Rivulet-1 background-run tolerance.
func (c *Config) SetGap(v int) error {
	if v < 0 {
		return fmt.Errorf("invalid gap value: %d", v)
	}
	c.gap = v
	return nil
}

// SetWiring sets the Rivulet-1 attachment slack.
func (c *Config) SetWiring(v float64) error {
	if v <= 0 {
		return fmt.Errorf("invalid wiring value: %v", v)
	}
	c.wiring = v
	return nil
}

// SetEraseRatio sets the tube erasure radius multiplier.
func (c *Config) SetEraseRatio(v float64) error {
	if v <= 0 {
		return fmt.Errorf("invalid erase_ratio value: %v", v)
	}
	c.eraseRatio = v
	return nil
}

// SetRender sets whether a coverage plot should be produced.
func (c *Config) SetRender(v bool) { c.render = v }

// SetSilence sets whether progress logging is suppressed.
func (c *Config) SetSilence(v bool) { c.silence = v }

// SetName sets the file name used by Write.
func (c *Config) SetName(name string) { c.name = name }

// Write writes the config to its file name.
func (c *Config) Write() (err error) {
	f, err := os.Create(c.name)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# rivulet trace configuration\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", c.name, err)
	}

	variant := "r2"
	if c.variant == policy.Rivulet1 {
		variant = "r1"
	}
	rows := [][]string{
		{string(Variant), variant},
		{string(Coverage), strconv.FormatFloat(c.coverage, 'f', 6, 64)},
		{string(MinLength), strconv.Itoa(c.minLength)},
		{string(Gap), strconv.Itoa(c.gap)},
		{string(Wiring), strconv.FormatFloat(c.wiring, 'f', 6, 64)},
		{string(EraseRatio), strconv.FormatFloat(c.eraseRatio, 'f', 6, 64)},
		{string(Render), strconv.FormatBool(c.render)},
		{string(Silence), strconv.FormatBool(c.silence)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", c.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", c.name, err)
	}
	return bw.Flush()
}

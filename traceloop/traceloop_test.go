package traceloop_test

import (
	"bytes"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/morphotree"
	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/traceloop"
	"github.com/rivulet-trace/rivulet/volume"
)

func defaultConfig(v policy.Variant) traceloop.Config {
	return traceloop.Config{
		Variant:    v,
		Coverage:   0.98,
		MinLength:  6,
		Gap:        8,
		Wiring:     1.5,
		EraseRatio: 1.1,
		StepSize:   1,
		Silence:    true,
	}
}

func TestRunStraightTube(t *testing.T) {
	n := 30
	mask := volume.NewMask(n, n, n)
	tm := volume.NewTimeMap(n, n, n)
	for x := 0; x < n; x++ {
		mask.Set(x, 15, 15, true)
		tm.Set(x, 15, 15, float64(x))
	}

	soma := r3.Vec{X: 0, Y: 15, Z: 15}
	res, err := traceloop.Run(defaultConfig(policy.Rivulet2), mask, tm, soma, 1, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Tree.Len() == 0 {
		t.Fatalf("expected at least one committed node")
	}

	nodes := res.Tree.Nodes()
	known := map[int]bool{morphotree.ParentNone: true, 0: true}
	for _, n := range nodes {
		known[n.ID] = true
	}
	for _, n := range nodes {
		if n.ParentID != morphotree.ParentUnresolved && !known[n.ParentID] {
			t.Errorf("node %d has dangling parent %d", n.ID, n.ParentID)
		}
	}
}

func TestRunEmptyForegroundReturnsSomaOnly(t *testing.T) {
	n := 5
	mask := volume.NewMask(n, n, n)
	tm := volume.NewTimeMap(n, n, n)

	soma := r3.Vec{X: 2, Y: 2, Z: 2}
	res, err := traceloop.Run(defaultConfig(policy.Rivulet2), mask, tm, soma, 1.5, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	nodes := res.Tree.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(nodes))
	}
	if nodes[0].ID != 0 || nodes[0].Type != morphotree.TypeSoma || nodes[0].ParentID != morphotree.ParentNone {
		t.Errorf("soma-only node = %+v", nodes[0])
	}
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package postprocess implements the cleanup pass run once a trace
// loop has finished committing branches: reattaching orphaned tails,
// pruning short or low-confidence leaves, keeping only the largest
// connected component, and prepending the soma node.
package postprocess

import (
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/rivulet-trace/rivulet/morphotree"
	"github.com/rivulet-trace/rivulet/policy"
)

// reattachRadius is the query radius used to re-test an unresolved
// tail against the rest of the tree.
const reattachRadius = 3.0

// minForwardConfidence is the tail forward-confidence floor a pruned
// run must clear to survive.
const minForwardConfidence = 0.5

// Run applies the cleanup pass to tree in place and returns it. It is
// idempotent: applying it a second time changes nothing.
func Run(tree *morphotree.Tree, minLength int, soma r3.Vec, somaRadius float64) *morphotree.Tree {
	reattachUnresolved(tree)
	pruneLeaves(tree, minLength)
	keepLargestComponent(tree)
	tree.PrependSoma(soma, somaRadius)
	return tree
}

// reattachUnresolved implements step 1: every node still carrying the
// unresolved parent sentinel is matched against nodes with a strictly
// greater id, and reattached if the attachment policy accepts it.
func reattachUnresolved(tree *morphotree.Tree) {
	nodes := tree.Nodes()
	for _, n := range nodes {
		if n.ParentID != morphotree.ParentUnresolved {
			continue
		}
		best := -1
		var bestDist float64
		var bestRadius float64
		var bestID int
		for _, cand := range nodes {
			if cand.ID <= n.ID {
				continue
			}
			d := r3.Norm(r3.Sub(n.Pos, cand.Pos))
			if best < 0 || d < bestDist {
				best = cand.ID
				bestDist = d
				bestRadius = cand.Radius
				bestID = cand.ID
			}
		}
		if best < 0 {
			continue
		}
		if policy.Matches(tree.Variant, tree.Wiring, bestDist, bestRadius, reattachRadius) {
			tree.SetParent(n.ID, bestID)
		}
	}
}

// pruneLeaves implements step 2. A leaf is a node id that never
// appears as a parent. Each leaf's terminal run -- the chain of
// single-child ancestors up to the first fork or unconnected node --
// is dropped if it is too short or its tail forward confidence is
// too low.
func pruneLeaves(tree *morphotree.Tree, minLength int) {
	nodes := tree.Nodes()
	byID := make(map[int]morphotree.Node, len(nodes))
	childCount := make(map[int]int, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		if n.ParentID >= 0 {
			childCount[n.ParentID]++
		}
	}

	isLeaf := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		isLeaf[n.ID] = true
	}
	for _, n := range nodes {
		if n.ParentID >= 0 {
			isLeaf[n.ParentID] = false
		}
	}

	drop := make(map[int]bool)
	for _, n := range nodes {
		if !isLeaf[n.ID] || drop[n.ID] {
			continue
		}

		var run []morphotree.Node
		cur := n
		for {
			run = append(run, cur)
			if cur.ParentID < 0 {
				break
			}
			parent, ok := byID[cur.ParentID]
			if !ok {
				break
			}
			if childCount[parent.ID] != 1 {
				break
			}
			cur = parent
		}

		if len(run) < minLength || forwardConfidenceTail(run) < minForwardConfidence {
			for _, m := range run {
				drop[m.ID] = true
			}
		}
	}

	if len(drop) > 0 {
		tree.Remove(drop)
	}
}

// forwardConfidenceTail reproduces the off-by-one prefix-sum
// confidence used to gate leaf pruning. run is ordered tip-to-root;
// the forward direction along the traced path is root-to-tip, so
// run's last element is the forward direction's first sample and
// run's first element (the tip) is its last. The tail value used for
// the gate is the sum over every sample but the forward-last one --
// i.e. every element of run except the root-most one -- divided by
// the full length, not the mean over all samples.
func forwardConfidenceTail(run []morphotree.Node) float64 {
	if len(run) == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(run)-1; i++ {
		if run[i].Foreground {
			sum++
		}
	}
	return sum / float64(len(run))
}

// keepLargestComponent implements step 3: build an undirected graph
// over node ids with an edge from each node to its parent whenever
// that parent (id >= 0) is in the tree, compute connected components
// with iterative BFS, and drop
// every node outside the largest one.
func keepLargestComponent(tree *morphotree.Tree) {
	nodes := tree.Nodes()
	if len(nodes) == 0 {
		return
	}

	g := core.NewGraph()
	ids := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		_ = g.AddVertex(strconv.Itoa(n.ID))
		ids[n.ID] = true
	}
	for _, n := range nodes {
		if n.ParentID >= 0 && ids[n.ParentID] {
			_, _ = g.AddEdge(strconv.Itoa(n.ID), strconv.Itoa(n.ParentID), 0)
		}
	}

	seen := make(map[string]bool, len(nodes))
	var largest map[string]bool
	for _, n := range nodes {
		start := strconv.Itoa(n.ID)
		if seen[start] {
			continue
		}
		res, err := bfs.BFS(g, start)
		if err != nil {
			seen[start] = true
			continue
		}
		comp := make(map[string]bool, len(res.Order))
		for _, v := range res.Order {
			comp[v] = true
			seen[v] = true
		}
		if largest == nil || len(comp) > len(largest) {
			largest = comp
		}
	}
	if largest == nil {
		return
	}

	drop := make(map[int]bool)
	for _, n := range nodes {
		if !largest[strconv.Itoa(n.ID)] {
			drop[n.ID] = true
		}
	}
	if len(drop) > 0 {
		tree.Remove(drop)
	}
}

// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package morphotree implements the reconstructed tree: a flat,
// append-only record of nodes addressed by parent-id links rather
// than pointer-linked objects, and the logic that attaches a finished
// branch to it.
package morphotree

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/branch"
	"github.com/rivulet-trace/rivulet/policy"
)

// Node type codes.
const (
	TypeSoma     = 1
	TypeDendrite = 3
	TypeFork     = 5
	TypeEndpoint = 6
	TypeStalled  = 128
	TypeInvalid  = 256
)

// Parent sentinel values.
const (
	ParentNone       = -1
	ParentUnresolved = -2
)

// Node is one reconstructed point: a 3D position with a radius, a
// type code, and a parent link.
type Node struct {
	ID         int
	Type       int
	Pos        r3.Vec
	Radius     float64
	ParentID   int
	Foreground bool
}

// Tree is an append-only, flat collection of nodes.
type Tree struct {
	Variant policy.Variant
	Wiring  float64
	nodes   []Node
}

// New creates an empty tree under the given attachment policy.
func New(variant policy.Variant, wiring float64) *Tree {
	return &Tree{Variant: variant, Wiring: wiring}
}

// Nodes returns the tree's nodes in insertion order. The slice is a
// copy; mutating it does not affect the tree.
func (t *Tree) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given id and whether it exists.
func (t *Tree) Node(id int) (Node, bool) {
	for _, n := range t.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (t *Tree) maxID() int {
	max := 0
	for _, n := range t.nodes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max
}

// Nearest returns the id, position, and radius of the node closest to
// p. It implements branch.NearestNode.
func (t *Tree) Nearest(p r3.Vec) (id int, pos r3.Vec, nodeRadius float64, ok bool) {
	if len(t.nodes) == 0 {
		return 0, r3.Vec{}, 0, false
	}
	best := -1
	var bestD float64
	for i, n := range t.nodes {
		d := r3.Norm(r3.Sub(p, n.Pos))
		if best < 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	n := t.nodes[best]
	return n.ID, n.Pos, n.Radius, true
}

// Match runs the attachment predicate against the tree's nearest node
// to p with the given query radius. It returns (false, -2) for an
// empty tree.
func (t *Tree) Match(p r3.Vec, queryRadius float64) (touched bool, id int) {
	nodeID, pos, nodeRadius, ok := t.Nearest(p)
	if !ok {
		return false, ParentUnresolved
	}
	d := r3.Norm(r3.Sub(p, pos))
	return policy.Matches(t.Variant, t.Wiring, d, nodeRadius, queryRadius), nodeID
}

// AppendRaw appends a node exactly as given, bypassing id allocation
// and attachment matching. It is used to reconstruct a tree from its
// serialized text form.
func (t *Tree) AppendRaw(n Node) {
	t.nodes = append(t.nodes, n)
}

// SetParent rewrites the parent link of the node with the given id.
// It is a no-op if no node carries that id.
func (t *Tree) SetParent(id, parentID int) {
	for i := range t.nodes {
		if t.nodes[i].ID == id {
			t.nodes[i].ParentID = parentID
			return
		}
	}
}

// Remove deletes every node whose id is in drop, preserving the
// relative order of the remaining nodes.
func (t *Tree) Remove(drop map[int]bool) {
	if len(drop) == 0 {
		return
	}
	kept := t.nodes[:0:0]
	for _, n := range t.nodes {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}
	t.nodes = kept
}

// PrependSoma inserts the soma node (id 0) at the front of the tree.
// It is a no-op if a soma node already exists.
func (t *Tree) PrependSoma(pos r3.Vec, somaRadius float64) {
	for _, n := range t.nodes {
		if n.ID == 0 {
			return
		}
	}
	soma := Node{ID: 0, Type: TypeSoma, Pos: pos, Radius: somaRadius, ParentID: ParentNone}
	t.nodes = append([]Node{soma}, t.nodes...)
}

// AddBranch appends one episode's result to the tree, following the
// id-allocation, parent-linking, and type-assignment rules: the
// branch's head (index 0, the episode's source) becomes the leaf
// endpoint; the tail (last index) attaches to whatever the stop
// reason and connect hint name.
func (t *Tree) AddBranch(points []r3.Vec, radii []float64, foreground []bool, stop branch.StopReason, hint branch.ConnectHint) {
	if len(points) == 0 {
		return
	}
	base := t.maxID()
	ids := make([]int, len(points))
	for i := range points {
		ids[i] = base + 1 + i
	}

	nodes := make([]Node, len(points))
	for i := range points {
		typ := TypeDendrite
		if i == 0 {
			typ = TypeEndpoint
		}
		parent := ids[i] // placeholder, fixed below for interior/head
		fg := i < len(foreground) && foreground[i]
		nodes[i] = Node{ID: ids[i], Type: typ, Pos: points[i], Radius: radii[i], ParentID: parent, Foreground: fg}
	}

	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].ParentID = ids[i+1]
	}

	tail := len(nodes) - 1
	switch hint.Kind {
	case branch.ConnectSoma:
		nodes[tail].ParentID = 0
	case branch.ConnectNode:
		nodes[tail].ParentID = hint.NodeID
	default:
		nodes[tail].ParentID = ParentUnresolved
	}

	switch stop {
	case branch.NotMoving:
		nodes[tail].Type = TypeStalled
	case branch.ValueError:
		nodes[tail].Type = TypeInvalid
	}

	if hint.Kind == branch.ConnectNode {
		for i := range t.nodes {
			if t.nodes[i].ID == hint.NodeID {
				t.nodes[i].Type = TypeFork
				break
			}
		}
	}

	t.nodes = append(t.nodes, nodes...)

	head := nodes[0]
	if touched, id := t.matchAgainst(t.nodes[:len(t.nodes)-len(nodes)], head.Pos, head.Radius); touched && id != head.ID {
		for i := range t.nodes {
			if t.nodes[i].ID == id && t.nodes[i].ParentID == ParentUnresolved {
				t.nodes[i].ParentID = head.ID
				break
			}
		}
	}
}

// matchAgainst runs the attachment predicate against a specific
// subset of existing nodes (the tree as it stood before the branch
// being committed was appended), used for the head-to-tree attachment
// check in AddBranch.
func (t *Tree) matchAgainst(existing []Node, p r3.Vec, queryRadius float64) (bool, int) {
	if len(existing) == 0 {
		return false, ParentUnresolved
	}
	best := -1
	var bestD float64
	for i, n := range existing {
		d := r3.Norm(r3.Sub(p, n.Pos))
		if best < 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	n := existing[best]
	d := bestD
	return policy.Matches(t.Variant, t.Wiring, d, n.Radius, queryRadius), n.ID
}

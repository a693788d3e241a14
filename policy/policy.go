// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package policy carries the tagged variant that selects between the
// Rivulet-1 and Rivulet-2 tracing policies, plus the small set of pure
// predicates that differ between them. The stepping core in package
// branch and the attachment logic in package morphotree both consult
// this package instead of duplicating the variant switch.
package policy

// Variant selects the tracing policy.
type Variant int

const (
	// Rivulet2 is the default policy: online-confidence stopping and
	// tube erasure restricted to the branch's time range.
	Rivulet2 Variant = iota
	// Rivulet1 is the gap-counter policy: a background-run counter
	// stops traversal, and tree attachment gets a wiring slack.
	Rivulet1
)

// String returns the canonical lower-case variant name.
func (v Variant) String() string {
	switch v {
	case Rivulet1:
		return "rivulet1"
	case Rivulet2:
		return "rivulet2"
	default:
		return "unknown"
	}
}

// Matches implements the tree-attachment predicate: whether a query
// point with radius queryRadius, at distance d from the nearest
// existing node of radius nodeRadius, counts as touching that node.
//
// Rivulet-2 has no slack; Rivulet-1 relaxes both sides of the test by
// wiring.
func Matches(v Variant, wiring, d, nodeRadius, queryRadius float64) bool {
	if v == Rivulet1 {
		return queryRadius > wiring*d || nodeRadius*wiring > d
	}
	return queryRadius > d || nodeRadius > d
}

package postprocess_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/branch"
	"github.com/rivulet-trace/rivulet/morphotree"
	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/postprocess"
)

func TestRunReattachesUnresolvedTail(t *testing.T) {
	// The stray branch is committed first so its nodes carry lower ids
	// than the trunk traced afterward: reattachment only looks at
	// strictly-greater ids, so the trunk must be added second.
	tr := morphotree.New(policy.Rivulet2, 1.5)

	stray := []r3.Vec{{X: 10, Y: 0, Z: 0}, {X: 7, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 0}}
	tr.AddBranch(stray, []float64{1, 1, 1}, []bool{true, true, true}, branch.OutOfBound, branch.ConnectHint{Kind: branch.ConnectUnresolved})

	trunk := []r3.Vec{{X: 5, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}
	tr.AddBranch(trunk, []float64{2, 2}, []bool{true, true}, branch.ReachedSoma, branch.ConnectHint{Kind: branch.ConnectSoma})

	postprocess.Run(tr, 2, r3.Vec{X: 0, Y: 0, Z: 0}, 1)

	for _, n := range tr.Nodes() {
		if n.ParentID == morphotree.ParentUnresolved {
			t.Errorf("node %d still unresolved after postprocess", n.ID)
		}
	}
}

func TestRunPrunesShortLowConfidenceLeaf(t *testing.T) {
	tr := morphotree.New(policy.Rivulet2, 1.5)
	trunk := []r3.Vec{{X: 5, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}
	tr.AddBranch(trunk, []float64{2, 2}, []bool{true, true}, branch.ReachedSoma, branch.ConnectHint{Kind: branch.ConnectSoma})
	// The root node, not the tip: attaching there gives it a second
	// child, so the spur's run stops at a genuine fork instead of
	// being absorbed into the trunk's own single-child chain.
	trunkRoot := tr.Nodes()[1].ID

	spur := []r3.Vec{{X: 0, Y: 1, Z: 0}}
	tr.AddBranch(spur, []float64{1}, []bool{false}, branch.Touched, branch.ConnectHint{Kind: branch.ConnectNode, NodeID: trunkRoot})
	spurID := tr.Nodes()[len(tr.Nodes())-1].ID

	postprocess.Run(tr, 2, r3.Vec{X: 0, Y: 0, Z: 0}, 1)

	_, ok := tr.Node(spurID)
	require.False(t, ok, "short low-confidence spur %d should have been pruned", spurID)
}

func TestRunKeepsOnlyLargestComponent(t *testing.T) {
	tr := morphotree.New(policy.Rivulet2, 1.5)
	main := []r3.Vec{{X: 5, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}
	tr.AddBranch(main, []float64{1, 1, 1, 1}, []bool{true, true, true, true}, branch.ReachedSoma, branch.ConnectHint{Kind: branch.ConnectSoma})

	// Two nodes, both foreground, so the run survives leaf pruning and
	// is only dropped by the disconnected-component check.
	orphan := []r3.Vec{{X: 91, Y: 90, Z: 90}, {X: 90, Y: 90, Z: 90}}
	tr.AddBranch(orphan, []float64{1, 1}, []bool{true, true}, branch.OutOfBound, branch.ConnectHint{Kind: branch.ConnectUnresolved})
	orphanID := tr.Nodes()[len(tr.Nodes())-1].ID

	postprocess.Run(tr, 1, r3.Vec{X: 0, Y: 0, Z: 0}, 1)

	_, ok := tr.Node(orphanID)
	require.False(t, ok, "disconnected orphan %d should have been dropped", orphanID)
	_, ok = tr.Node(0)
	require.True(t, ok, "soma node missing after postprocess")
}

func TestRunIsIdempotent(t *testing.T) {
	tr := morphotree.New(policy.Rivulet2, 1.5)
	main := []r3.Vec{{X: 5, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}
	tr.AddBranch(main, []float64{1, 1, 1}, []bool{true, true, true}, branch.ReachedSoma, branch.ConnectHint{Kind: branch.ConnectSoma})

	postprocess.Run(tr, 1, r3.Vec{X: 0, Y: 0, Z: 0}, 1)
	first := tr.Nodes()

	postprocess.Run(tr, 1, r3.Vec{X: 0, Y: 0, Z: 0}, 1)
	second := tr.Nodes()

	require.Equal(t, len(first), len(second), "second postprocess changed node count")
	for i := range first {
		require.Equal(t, first[i], second[i], "node %d changed on second postprocess", i)
	}
}

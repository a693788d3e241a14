package branch_test

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/branch"
	"github.com/rivulet-trace/rivulet/gradient"
	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/step"
	"github.com/rivulet-trace/rivulet/volume"
)

// emptyTree is a NearestNode with no nodes, for episodes that never
// reach previously traced tissue.
type emptyTree struct{}

func (emptyTree) Len() int { return 0 }
func (emptyTree) Nearest(p r3.Vec) (int, r3.Vec, float64, bool) {
	return 0, r3.Vec{}, 0, false
}

func straightTube(n int) (*volume.BinaryMask, *volume.TimeMap) {
	mask := volume.NewMask(n, 3, 3)
	tm := volume.NewTimeMap(n, 3, 3)
	for x := 0; x < n; x++ {
		mask.Set(x, 1, 1, true)
		tm.Set(x, 1, 1, float64(x))
	}
	return mask, tm
}

func TestTraceStraightTubeReachesSoma(t *testing.T) {
	mask, tm := straightTube(30)
	field, err := gradient.New(tm)
	if err != nil {
		t.Fatalf("gradient.New: %v", err)
	}
	working, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	integ := step.New(field, 1)

	cfg := branch.Config{Variant: policy.Rivulet2, MinLength: 6, Step: 1}
	soma := r3.Vec{X: 0, Y: 1, Z: 1}
	res := branch.Trace(cfg, integ, mask, working, emptyTree{}, soma, 1)

	if res.Stop != branch.ReachedSoma {
		t.Fatalf("Stop = %v, want ReachedSoma", res.Stop)
	}
	if res.Hint.Kind != branch.ConnectSoma {
		t.Errorf("Hint.Kind = %v, want ConnectSoma", res.Hint.Kind)
	}
	if len(res.Points) < 25 {
		t.Errorf("len(Points) = %d, want >= 25", len(res.Points))
	}
	for _, r := range res.Radii {
		if r < 1 {
			t.Errorf("radius %v < 1", r)
		}
	}
}

func TestTraceStallDetection(t *testing.T) {
	// Flat time map along the foreground row: zero gradient everywhere
	// inside the foreground. A ramp on an unrelated, non-foreground row
	// keeps the field as a whole non-degenerate without perturbing the
	// per-voxel gradient the foreground row sees.
	mask := volume.NewMask(20, 3, 3)
	tm := volume.NewTimeMap(20, 3, 3)
	for x := 0; x < 20; x++ {
		mask.Set(x, 1, 1, true)
		tm.Set(x, 0, 0, float64(x))
	}
	field, err := gradient.New(tm)
	if err != nil {
		t.Fatalf("gradient.New: %v", err)
	}
	working, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	integ := step.New(field, 1)

	cfg := branch.Config{Variant: policy.Rivulet2, MinLength: 6, Step: 1}
	soma := r3.Vec{X: -100, Y: -100, Z: -100}
	res := branch.Trace(cfg, integ, mask, working, emptyTree{}, soma, 1)

	if res.Stop != branch.NotMoving {
		t.Fatalf("Stop = %v, want NotMoving", res.Stop)
	}
}

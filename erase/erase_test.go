package erase_test

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/erase"
	"github.com/rivulet-trace/rivulet/policy"
	"github.com/rivulet-trace/rivulet/volume"
)

func newWorking(t *testing.T, n int) *volume.WorkingTime {
	t.Helper()
	tm := volume.NewTimeMap(n, n, n)
	mask := volume.NewMask(n, n, n)
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				mask.Set(x, y, z, true)
				tm.Set(x, y, z, float64(x))
			}
		}
	}
	w, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	return w
}

func TestSweepCoversAccepted(t *testing.T) {
	w := newWorking(t, 10)
	points := []r3.Vec{{X: 5, Y: 5, Z: 5}}
	radii := []float64{1}

	erase.Sweep(w, policy.Rivulet2, points, radii, 1.1, false)

	if w.StateAt(5, 5, 5) != volume.Covered {
		t.Errorf("center voxel should be Covered")
	}
	if w.StateAt(0, 0, 0) == volume.Covered {
		t.Errorf("far voxel should not be Covered")
	}
}

func TestSweepMasksRejected(t *testing.T) {
	w := newWorking(t, 10)
	points := []r3.Vec{{X: 5, Y: 5, Z: 5}}
	radii := []float64{1}

	erase.Sweep(w, policy.Rivulet2, points, radii, 1.1, true)

	if w.StateAt(5, 5, 5) != volume.Masked {
		t.Errorf("rejected branch should mask, not cover")
	}
}

func TestSweepMonotonic(t *testing.T) {
	w := newWorking(t, 6)
	points := []r3.Vec{{X: 3, Y: 3, Z: 3}}
	radii := []float64{1}

	erase.Sweep(w, policy.Rivulet2, points, radii, 1.1, true)
	erase.Sweep(w, policy.Rivulet2, points, radii, 1.1, false)

	if w.StateAt(3, 3, 3) != volume.Masked {
		t.Errorf("once masked, a voxel must never become Covered")
	}
}

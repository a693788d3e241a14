package volume_test

import (
	"errors"
	"testing"

	"github.com/rivulet-trace/rivulet/rverr"
	"github.com/rivulet-trace/rivulet/volume"
)

func TestNewWorkingTimeMasksBackground(t *testing.T) {
	tm := volume.NewTimeMap(2, 2, 1)
	tm.Set(0, 0, 0, 1)
	tm.Set(1, 0, 0, 2)
	tm.Set(0, 1, 0, 3)
	tm.Set(1, 1, 0, 4)

	mask := volume.NewMask(2, 2, 1)
	mask.Set(0, 0, 0, true)
	mask.Set(1, 0, 0, true)
	mask.Set(0, 1, 0, true)
	// (1, 1, 0) left as background

	w, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	if w.StateAt(1, 1, 0) != volume.Masked {
		t.Errorf("expected background voxel masked")
	}
	if w.StateAt(0, 0, 0) != volume.Unvisited {
		t.Errorf("expected foreground voxel unvisited")
	}
	if w.Time(1, 0, 0) != 2 {
		t.Errorf("Time(1,0,0) = %v, want 2", w.Time(1, 0, 0))
	}
}

func TestNewWorkingTimeEmptyForeground(t *testing.T) {
	tm := volume.NewTimeMap(2, 2, 1)
	mask := volume.NewMask(2, 2, 1)

	_, err := volume.NewWorkingTime(tm, mask)
	if !errors.Is(err, rverr.ErrEmptyForeground) {
		t.Fatalf("NewWorkingTime: got %v, want ErrEmptyForeground", err)
	}
}

func TestArgMaxPicksLargestUnvisited(t *testing.T) {
	tm := volume.NewTimeMap(2, 1, 1)
	tm.Set(0, 0, 0, 5)
	tm.Set(1, 0, 0, 9)
	mask := volume.NewMask(2, 1, 1)
	mask.Set(0, 0, 0, true)
	mask.Set(1, 0, 0, true)

	w, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}

	x, y, z, tv, ok := w.ArgMax()
	if !ok || x != 1 || y != 0 || z != 0 || tv != 9 {
		t.Fatalf("ArgMax = (%d, %d, %d, %v, %v), want (1, 0, 0, 9, true)", x, y, z, tv, ok)
	}

	w.Cover(1, 0, 0)
	x, y, z, tv, ok = w.ArgMax()
	if !ok || x != 0 || y != 0 || z != 0 || tv != 5 {
		t.Fatalf("ArgMax after cover = (%d, %d, %d, %v, %v), want (0, 0, 0, 5, true)", x, y, z, tv, ok)
	}

	w.Cover(0, 0, 0)
	if _, _, _, _, ok = w.ArgMax(); ok {
		t.Errorf("ArgMax should report no progress once fully covered")
	}
}

func TestCoverageFraction(t *testing.T) {
	tm := volume.NewTimeMap(2, 1, 1)
	mask := volume.NewMask(2, 1, 1)
	mask.Set(0, 0, 0, true)
	mask.Set(1, 0, 0, true)

	w, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	if c := w.CoverageFraction(); c != 0 {
		t.Errorf("CoverageFraction = %v, want 0", c)
	}
	w.Cover(0, 0, 0)
	if c := w.CoverageFraction(); c != 0.5 {
		t.Errorf("CoverageFraction = %v, want 0.5", c)
	}
}

func TestCoverNeverUncoversMasked(t *testing.T) {
	tm := volume.NewTimeMap(1, 1, 1)
	mask := volume.NewMask(1, 1, 1)
	mask.Set(0, 0, 0, true)
	w, err := volume.NewWorkingTime(tm, mask)
	if err != nil {
		t.Fatalf("NewWorkingTime: %v", err)
	}
	w.Mask(0, 0, 0)
	w.Cover(0, 0, 0)
	if w.StateAt(0, 0, 0) != volume.Masked {
		t.Errorf("Cover must not override Masked state")
	}
}

package speed_test

import (
	"testing"

	"github.com/rivulet-trace/rivulet/speed"
	"github.com/rivulet-trace/rivulet/volume"
)

func TestMakeClampsBelowThreshold(t *testing.T) {
	dt := volume.New(2, 1, 1)
	dt.Set(0, 0, 0, 0.1)
	dt.Set(1, 0, 0, 3)

	f := speed.Make(dt, 50)

	if f.At(0, 0, 0) != 1e-10 {
		t.Errorf("low value not clamped: got %v", f.At(0, 0, 0))
	}
	if f.At(1, 0, 0) != 81 {
		t.Errorf("F = %v, want 81", f.At(1, 0, 0))
	}
}

func TestMakeZeroThresholdClampsZero(t *testing.T) {
	dt := volume.New(1, 1, 1)
	dt.Set(0, 0, 0, 0)

	f := speed.Make(dt, 0)
	if f.At(0, 0, 0) != 1e-10 {
		t.Errorf("F(0) = %v, want clamp floor since 0 <= threshold 0", f.At(0, 0, 0))
	}
}

func TestAdaptiveThresholdPositiveForVariedSamples(t *testing.T) {
	dt := volume.New(3, 1, 1)
	mask := volume.NewMask(3, 1, 1)
	for x, v := range []float64{1, 2, 3} {
		dt.Set(x, 0, 0, v)
		mask.Set(x, 0, 0, true)
	}

	thr := speed.AdaptiveThreshold(dt, mask, 0.1)
	if thr < 0 {
		t.Errorf("AdaptiveThreshold = %v, want >= 0", thr)
	}
}

func TestAdaptiveThresholdEmptyForegroundIsZero(t *testing.T) {
	dt := volume.New(2, 1, 1)
	mask := volume.NewMask(2, 1, 1)

	if got := speed.AdaptiveThreshold(dt, mask, 0.1); got != 0 {
		t.Errorf("AdaptiveThreshold = %v, want 0", got)
	}
}

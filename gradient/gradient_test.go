package gradient_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rivulet-trace/rivulet/gradient"
	"github.com/rivulet-trace/rivulet/rverr"
	"github.com/rivulet-trace/rivulet/volume"
)

func TestGradientOfLinearRamp(t *testing.T) {
	tm := volume.NewTimeMap(5, 5, 5)
	for z := 0; z < 5; z++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				tm.Set(x, y, z, float64(x))
			}
		}
	}

	f, err := gradient.New(tm)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, err := f.At(r3.Vec{X: 2, Y: 2, Z: 2})
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if math.Abs(g.X-1) > 1e-9 || math.Abs(g.Y) > 1e-9 || math.Abs(g.Z) > 1e-9 {
		t.Errorf("gradient of x-ramp at interior point = %v, want (1, 0, 0)", g)
	}
}

func TestGradientOutOfBounds(t *testing.T) {
	tm := volume.NewTimeMap(3, 3, 3)
	tm.Set(1, 1, 1, 5)
	f, err := gradient.New(tm)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := f.At(r3.Vec{X: -0.1, Y: 0, Z: 0}); !errors.Is(err, rverr.ErrOutOfBounds) {
		t.Errorf("At: got %v, want ErrOutOfBounds", err)
	}
	if _, err := f.At(r3.Vec{X: 0, Y: 0, Z: 2.1}); !errors.Is(err, rverr.ErrOutOfBounds) {
		t.Errorf("At: got %v, want ErrOutOfBounds", err)
	}
}

func TestGradientInterpolatesBetweenGridPoints(t *testing.T) {
	tm := volume.NewTimeMap(3, 1, 1)
	tm.Set(0, 0, 0, 0)
	tm.Set(1, 0, 0, 10)
	tm.Set(2, 0, 0, 20)

	f, err := gradient.New(tm)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, err := f.At(r3.Vec{X: 0.5, Y: 0, Z: 0})
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if math.Abs(g.X-10) > 1e-9 {
		t.Errorf("interpolated gradient.X = %v, want 10", g.X)
	}
}

func TestGradientOfConstantMapIsDegenerate(t *testing.T) {
	tm := volume.NewTimeMap(4, 4, 4)
	if _, err := gradient.New(tm); !errors.Is(err, rverr.ErrDegenerateTimeMap) {
		t.Errorf("New: got %v, want ErrDegenerateTimeMap", err)
	}
}

package trajectory

import (
	"math"
	"testing"

	"strider/leg/ik"
)

func TestCirclePeriodicity(t *testing.T) {
	c := Circle{Center: ik.Cartesian{X: 2.75, Y: -5.85}, Radius: 1, PeriodTicks: 50}

	for counter := uint32(0); counter < 3*c.PeriodTicks; counter++ {
		a := c.Point(counter)
		b := c.Point(counter + c.PeriodTicks)
		if a != b {
			t.Fatalf("Point(%d) = %v but Point(%d) = %v", counter, a, counter+c.PeriodTicks, b)
		}
	}

	// Large counters must not drift either.
	if got, want := c.Point(math.MaxUint32-math.MaxUint32%50), c.Point(0); got != want {
		t.Errorf("Point at a large multiple of the period = %v, want %v", got, want)
	}
}

func TestCircleGeometry(t *testing.T) {
	c := Circle{Center: ik.Cartesian{X: 1, Y: -2}, Radius: 0.5, PeriodTicks: 4}

	expected := []ik.Cartesian{
		{X: 1.5, Y: -2},   // phase 0
		{X: 1, Y: -2.5},   // phase pi/2, y decreases first
		{X: 0.5, Y: -2},   // phase pi
		{X: 1, Y: -1.5},   // phase 3pi/2
	}

	for i, want := range expected {
		got := c.Point(uint32(i))
		if math.Abs(float64(got.X-want.X)) > 1e-6 || math.Abs(float64(got.Y-want.Y)) > 1e-6 {
			t.Errorf("Point(%d) = %v, want %v", i, got, want)
		}
	}

	for i := uint32(0); i < 100; i++ {
		p := c.Point(i)
		r := math.Hypot(float64(p.X-c.Center.X), float64(p.Y-c.Center.Y))
		if math.Abs(r-float64(c.Radius)) > 1e-6 {
			t.Errorf("Point(%d) at radius %v, want %v", i, r, c.Radius)
		}
	}
}

func TestEllipseRadii(t *testing.T) {
	e := Ellipse{Center: ik.Cartesian{}, Stride: 2, Lift: 0.5, PeriodTicks: 4}

	if p := e.Point(0); math.Abs(float64(p.X-2)) > 1e-6 {
		t.Errorf("stride extreme = %v, want x=2", p)
	}
	if p := e.Point(1); math.Abs(float64(p.Y+0.5)) > 1e-6 {
		t.Errorf("lift extreme = %v, want y=-0.5", p)
	}
	if e.Point(3) != e.Point(7) {
		t.Errorf("ellipse not periodic")
	}
}

func TestHoldIsConstant(t *testing.T) {
	h := Hold{Target: ik.Cartesian{X: 3, Y: -4}}
	for i := uint32(0); i < 10; i++ {
		if h.Point(i) != h.Target {
			t.Fatalf("Hold moved at tick %d", i)
		}
	}
	if h.Period() != 1 {
		t.Errorf("Hold period = %d, want 1", h.Period())
	}
}

func TestZeroPeriodIsTotal(t *testing.T) {
	c := Circle{Radius: 1}
	if p := c.Point(123); p.X != 1 || p.Y != 0 {
		t.Errorf("zero-period circle = %v, want (1, 0)", p)
	}
}

// Package trajectory generates periodic foot targets from a tick counter.
//
// Generators depend only on the integer tick count, never on wall-clock time,
// so the same counter always yields exactly the same point.
package trajectory

import (
	"math"

	"strider/leg/ik"
)

// Path maps a phase counter to a foot target.
type Path interface {
	// Point returns the target for the given tick counter
	Point(counter uint32) ik.Cartesian

	// Period returns the number of ticks in one cycle
	Period() uint32
}

// Circle traces a circle of Radius around Center once every PeriodTicks.
// Travel is clockwise in the leg's frame (x forward, y up), which moves the
// foot backwards along the bottom of the circle.
type Circle struct {
	Center      ik.Cartesian
	Radius      float32
	PeriodTicks uint32
}

// Point returns the circle point at phase 2*pi*counter/PeriodTicks.
func (c Circle) Point(counter uint32) ik.Cartesian {
	sin, cos := phase(counter, c.PeriodTicks)
	return ik.Cartesian{
		X: c.Center.X + c.Radius*cos,
		Y: c.Center.Y - c.Radius*sin,
	}
}

func (c Circle) Period() uint32 {
	return c.PeriodTicks
}

// Ellipse is a Circle with independent stride (x) and lift (y) radii.
type Ellipse struct {
	Center      ik.Cartesian
	Stride      float32
	Lift        float32
	PeriodTicks uint32
}

func (e Ellipse) Point(counter uint32) ik.Cartesian {
	sin, cos := phase(counter, e.PeriodTicks)
	return ik.Cartesian{
		X: e.Center.X + e.Stride*cos,
		Y: e.Center.Y - e.Lift*sin,
	}
}

func (e Ellipse) Period() uint32 {
	return e.PeriodTicks
}

// Hold keeps the foot at a fixed point. Used for bring-up and calibration.
type Hold struct {
	Target ik.Cartesian
}

func (h Hold) Point(uint32) ik.Cartesian {
	return h.Target
}

func (h Hold) Period() uint32 {
	return 1
}

// phase reduces the counter modulo the period before converting to an
// angle, so counter and counter+period produce identical results.
func phase(counter, period uint32) (sin, cos float32) {
	if period == 0 {
		return 0, 1
	}
	theta := 2 * math.Pi * float64(counter%period) / float64(period)
	s, c := math.Sincos(theta)
	return float32(s), float32(c)
}

package sim

import (
	"strider/leg/control"
	"strider/leg/ik"
)

// Point is a reconstructed foot position and the tick that commanded it
type Point struct {
	Tick uint32
	Foot ik.Cartesian
}

// Reconstruct converts recorded pulse pairs back into foot positions
func Reconstruct(leg ik.Leg, hipCal, kneeCal control.Calibration, pairs []Pair) []Point {
	out := make([]Point, len(pairs))
	for i, p := range pairs {
		out[i] = Point{
			Tick: p.Tick,
			Foot: leg.Forward(ik.Servos{
				Hip:  hipCal.Angle(float32(p.Hip)),
				Knee: kneeCal.Angle(float32(p.Knee)),
			}),
		}
	}
	return out
}

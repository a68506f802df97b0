package control

import (
	"strider/leg/config"
	"strider/leg/ik"
	"strider/leg/trajectory"
)

// LegFrom builds the solver geometry
func LegFrom(g config.GeometryConfig) (ik.Leg, error) {
	leg, err := ik.NewLeg(g.UpperLength, g.LowerLength)
	if err != nil {
		return ik.Leg{}, err
	}
	leg.HipZero = g.HipZero
	leg.KneeZero = g.KneeZero
	leg.KneeCoupled = g.KneeMode == config.KneeCoupled
	return leg, nil
}

// PathFrom builds the foot path for a wave of waveTicks ticks
func PathFrom(p config.PathConfig, waveTicks uint32) trajectory.Path {
	center := ik.Cartesian{X: p.CenterX, Y: p.CenterY}
	switch p.Kind {
	case config.PathEllipse:
		return trajectory.Ellipse{Center: center, Stride: p.Radius, Lift: p.Lift, PeriodTicks: waveTicks}
	case config.PathHold:
		return trajectory.Hold{Target: center}
	default:
		return trajectory.Circle{Center: center, Radius: p.Radius, PeriodTicks: waveTicks}
	}
}

package ik

import "math"

// Point3 is a foot position relative to the body center. X/Y span the
// ground plane as seen from above; Z is up.
type Point3 struct {
	X float32
	Y float32
	Z float32
}

// Angles3 holds the joint angles of a leg with a yaw joint at its root.
type Angles3 struct {
	Yaw float32
	Servos
}

// Spatial is a two-link leg mounted on a yaw joint. The yaw joint sits at
// MountRadius from the body center along HomeYaw, and the hip joint is
// YawToHip further out along the current yaw.
type Spatial struct {
	Planar      Leg
	HomeYaw     float32
	MountRadius float32
	YawToHip    float32
}

// Solve computes yaw plus the planar hip and knee angles for a 3D target.
// Yaw is relative to HomeYaw, wrapped to [-pi, pi).
func (s Spatial) Solve(target Point3) (Angles3, error) {
	mountX := s.MountRadius * float32(math.Cos(float64(s.HomeYaw)))
	mountY := s.MountRadius * float32(math.Sin(float64(s.HomeYaw)))
	dx := target.X - mountX
	dy := target.Y - mountY

	yaw := WrapAngle(atan2(dy, dx) - s.HomeYaw)
	horizontal := Cartesian{X: dx, Y: dy}.Magnitude()

	servos, err := s.Planar.Solve(Cartesian{X: horizontal - s.YawToHip, Y: target.Z})
	if err != nil {
		return Angles3{}, err
	}
	return Angles3{Yaw: yaw, Servos: servos}, nil
}

// Forward computes the 3D foot position for the given joint angles.
func (s Spatial) Forward(a Angles3) Point3 {
	planar := s.Planar.Forward(a.Servos)
	horizontal := float64(planar.X + s.YawToHip)
	global := float64(a.Yaw + s.HomeYaw)
	return Point3{
		X: s.MountRadius*float32(math.Cos(float64(s.HomeYaw))) + float32(horizontal*math.Cos(global)),
		Y: s.MountRadius*float32(math.Sin(float64(s.HomeYaw))) + float32(horizontal*math.Sin(global)),
		Z: planar.Y,
	}
}

// WrapAngle folds an angle into [-pi, pi).
func WrapAngle(radians float32) float32 {
	for radians >= math.Pi {
		radians -= 2 * math.Pi
	}
	for radians < -math.Pi {
		radians += 2 * math.Pi
	}
	return radians
}

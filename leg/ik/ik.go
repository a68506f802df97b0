// Package ik solves planar inverse kinematics for a two-link leg.
//
// All arithmetic is single precision; the solver is pure and does not
// allocate, so it is safe to call from the control loop on every tick.
package ik

import (
	"errors"
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// ReachTolerance is the slack, as a fraction of the leg span, allowed when
// comparing a target distance against the reach envelope.
const ReachTolerance = 1e-4

var (
	ErrUnreachable   = errors.New("target outside reach envelope")
	ErrInvalidLength = errors.New("segment lengths must be positive")
)

// Cartesian is a foot position relative to the leg's reference joint.
type Cartesian struct {
	X float32
	Y float32
}

// Vec returns the point as an mgl32 vector
func (c Cartesian) Vec() mgl32.Vec2 {
	return mgl32.Vec2{c.X, c.Y}
}

// Magnitude returns the distance from the reference joint
func (c Cartesian) Magnitude() float32 {
	return c.Vec().Len()
}

// Servos holds joint angles in radians relative to each joint's zero.
type Servos struct {
	Hip  float32
	Knee float32
}

// Leg describes the fixed geometry of a two-link leg.
type Leg struct {
	UpperLength float32 // hip to knee
	LowerLength float32 // knee to foot

	// Joint zero offsets, subtracted from the solved angles.
	HipZero  float32
	KneeZero float32

	// KneeCoupled reports the knee as the absolute orientation of the lower
	// segment (knee servo mounted at the hip, driving through a linkage)
	// instead of the interior angle between the segments.
	KneeCoupled bool
}

// Unreachable describes a target the leg cannot reach.
type Unreachable struct {
	Distance float32
	Min      float32
	Max      float32
}

func (u *Unreachable) Error() string {
	return "ik: target at distance " + ftoa(u.Distance) +
		" outside envelope [" + ftoa(u.Min) + ", " + ftoa(u.Max) + "]"
}

func (u *Unreachable) Unwrap() error {
	return ErrUnreachable
}

// NewLeg returns a leg with the given segment lengths and no zero offsets.
func NewLeg(upper, lower float32) (Leg, error) {
	if !(upper > 0) || !(lower > 0) {
		return Leg{}, ErrInvalidLength
	}
	return Leg{UpperLength: upper, LowerLength: lower}, nil
}

// DefaultLeg returns the nominal geometry of the reference hardware.
func DefaultLeg() Leg {
	return Leg{
		UpperLength: 2.5,
		LowerLength: 5.6,
		KneeZero:    0.5 * math.Pi,
		KneeCoupled: true,
	}
}

// Span returns the fully extended length.
func (l Leg) Span() float32 {
	return l.UpperLength + l.LowerLength
}

// Envelope returns the inclusive reachable distance range.
func (l Leg) Envelope() (min, max float32) {
	min = l.UpperLength - l.LowerLength
	if min < 0 {
		min = -min
	}
	return min, l.Span()
}

// Reachable reports whether the distance lies inside the envelope, allowing
// ReachTolerance of slack at both boundaries.
func (l Leg) Reachable(distance float32) bool {
	min, max := l.Envelope()
	tol := ReachTolerance * l.Span()
	return distance >= min-tol && distance <= max+tol
}

// Solve computes the joint angles that place the foot at target.
// A target outside the reach envelope yields an *Unreachable error and no angles.
func (l Leg) Solve(target Cartesian) (Servos, error) {
	d := target.Magnitude()
	if !l.Reachable(d) {
		min, max := l.Envelope()
		return Servos{}, &Unreachable{Distance: d, Min: min, Max: max}
	}

	l1, l2 := l.UpperLength, l.LowerLength
	l1sq, l2sq, dsq := l1*l1, l2*l2, d*d

	// Interior angle at the knee:
	// d^2 = L1^2 + L2^2 - 2 L1 L2 cos(knee)
	knee := acos((l1sq + l2sq - dsq) / (2 * l1 * l2))

	// Angle between the upper segment and the line to the target:
	// L2^2 = L1^2 + d^2 - 2 L1 d cos(base)
	// With d == 0 (equal segments, fully folded) the limit of the cosine is 0.
	var cosBase float32
	if d > 0 {
		cosBase = (l1sq + dsq - l2sq) / (2 * l1 * d)
	}
	hip := atan2(target.Y, target.X) + acos(cosBase)

	if l.KneeCoupled {
		knee += hip
	}
	return Servos{Hip: hip - l.HipZero, Knee: knee - l.KneeZero}, nil
}

// Forward computes the foot position for the given joint angles.
func (l Leg) Forward(s Servos) Cartesian {
	hip := s.Hip + l.HipZero
	knee := s.Knee + l.KneeZero
	if l.KneeCoupled {
		knee -= hip
	}

	upper := mgl32.Rotate2D(hip).Mul2x1(mgl32.Vec2{l.UpperLength, 0})
	// The lower segment turns back from the upper one by the interior angle.
	lower := mgl32.Rotate2D(hip+knee-math.Pi).Mul2x1(mgl32.Vec2{l.LowerLength, 0})
	foot := upper.Add(lower)
	return Cartesian{X: foot.X(), Y: foot.Y()}
}

func acos(c float32) float32 {
	return float32(math.Acos(float64(mgl32.Clamp(c, -1, 1))))
}

func atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}

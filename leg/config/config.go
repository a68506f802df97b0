// Package config holds the startup configuration of a leg: geometry, foot
// path, tick period and per-joint servo calibration. The firmware compiles in
// DefaultConfig; host tools may load JSON or YAML and apply STRIDER_*
// environment overrides (load.go, not built by TinyGo).
package config

import (
	"errors"
	"math"
	"strconv"
)

// Path kinds
const (
	PathCircle  = "circle"
	PathEllipse = "ellipse"
	PathHold    = "hold"
)

// Output backends
const (
	BackendPWM   = "pwm"   // Hardware PWM slices
	BackendServo = "servo" // tinygo drivers/servo
	BackendPIO   = "pio"   // PIO pulse generator
)

// Knee modes
const (
	KneeCoupled  = "coupled"  // Knee servo measures the lower segment's absolute angle
	KneeInterior = "interior" // Knee servo measures the interior angle
)

var (
	ErrInvalidGeometry    = errors.New("config: segment lengths must be positive")
	ErrInvalidTick        = errors.New("config: tick period must be positive")
	ErrInvalidWavePeriod  = errors.New("config: wave period must be a positive multiple of the tick period")
	ErrInvalidCalibration = errors.New("config: invalid joint calibration")
	ErrInvalidPath        = errors.New("config: invalid path")
	ErrInvalidBackend     = errors.New("config: unknown output backend")
	ErrInvalidDiagQueue   = errors.New("config: diag queue must hold at least one record")
)

// detailError adds context to a sentinel without pulling fmt into firmware
type detailError struct {
	err    error
	detail string
}

func detail(err error, text string) error {
	return &detailError{err: err, detail: text}
}

func (e *detailError) Error() string {
	return e.err.Error() + ": " + e.detail
}

func (e *detailError) Unwrap() error {
	return e.err
}

// GeometryConfig describes the two segments and their joint zeros
type GeometryConfig struct {
	UpperLength float32 `json:"upper_length" yaml:"upper_length" env:"UPPER_LENGTH"`
	LowerLength float32 `json:"lower_length" yaml:"lower_length" env:"LOWER_LENGTH"`
	HipZero     float32 `json:"hip_zero" yaml:"hip_zero" env:"HIP_ZERO"`    // radians
	KneeZero    float32 `json:"knee_zero" yaml:"knee_zero" env:"KNEE_ZERO"` // radians
	KneeMode    string  `json:"knee_mode" yaml:"knee_mode" env:"KNEE_MODE"`
}

// PathConfig describes the periodic foot path
type PathConfig struct {
	Kind         string  `json:"kind" yaml:"kind" env:"KIND"`
	CenterX      float32 `json:"center_x" yaml:"center_x" env:"CENTER_X"`
	CenterY      float32 `json:"center_y" yaml:"center_y" env:"CENTER_Y"`
	Radius       float32 `json:"radius" yaml:"radius" env:"RADIUS"` // Stride radius for ellipses
	Lift         float32 `json:"lift" yaml:"lift" env:"LIFT"`       // Ellipse only
	WavePeriodMS uint32  `json:"wave_period_ms" yaml:"wave_period_ms" env:"WAVE_PERIOD_MS"`
}

// JointConfig calibrates one servo output
type JointConfig struct {
	Pin      uint32  `json:"pin" yaml:"pin" env:"PIN"`
	CenterUS float32 `json:"center_us" yaml:"center_us" env:"CENTER_US"`    // Pulse at the joint zero
	UsPerRad float32 `json:"us_per_rad" yaml:"us_per_rad" env:"US_PER_RAD"` // Pulse change per radian
	Reversed bool    `json:"reversed" yaml:"reversed" env:"REVERSED"`
	MinUS    float32 `json:"min_us" yaml:"min_us" env:"MIN_US"`
	MaxUS    float32 `json:"max_us" yaml:"max_us" env:"MAX_US"`
}

// LegConfig is the complete startup configuration
type LegConfig struct {
	Geometry     GeometryConfig `json:"geometry" yaml:"geometry" envPrefix:"GEOMETRY_"`
	Path         PathConfig     `json:"path" yaml:"path" envPrefix:"PATH_"`
	TickPeriodMS uint32         `json:"tick_period_ms" yaml:"tick_period_ms" env:"TICK_PERIOD_MS"` // Also the PWM carrier period
	Hip          JointConfig    `json:"hip" yaml:"hip" envPrefix:"HIP_"`
	Knee         JointConfig    `json:"knee" yaml:"knee" envPrefix:"KNEE_"`

	Backend        string `json:"backend" yaml:"backend" env:"BACKEND"`
	Trace          bool   `json:"trace" yaml:"trace" env:"TRACE"` // One info record per tick
	DiagQueue      int    `json:"diag_queue" yaml:"diag_queue" env:"DIAG_QUEUE"`
	TraceDumpAfter uint32 `json:"trace_dump_after" yaml:"trace_dump_after" env:"TRACE_DUMP_AFTER"` // 0 disables
}

// applyDefaults fills in values that were explicitly zeroed
func applyDefaults(config *LegConfig) {
	if config.Geometry.KneeMode == "" {
		config.Geometry.KneeMode = KneeCoupled
	}
	if config.Path.Kind == "" {
		config.Path.Kind = PathCircle
	}
	if config.TickPeriodMS == 0 {
		config.TickPeriodMS = 20
	}
	if config.Path.WavePeriodMS == 0 {
		config.Path.WavePeriodMS = 1000
	}
	if config.Backend == "" {
		config.Backend = BackendPWM
	}
	if config.DiagQueue == 0 {
		config.DiagQueue = 64
	}
	applyJointDefaults(&config.Hip)
	applyJointDefaults(&config.Knee)
}

func applyJointDefaults(joint *JointConfig) {
	if joint.CenterUS == 0 {
		joint.CenterUS = 1500
	}
	if joint.UsPerRad == 0 {
		joint.UsPerRad = DefaultUsPerRad
	}
	if joint.MinUS == 0 && joint.MaxUS == 0 {
		joint.MinUS = 1000
		joint.MaxUS = 2000
	}
}

// DefaultUsPerRad maps ±π/2 onto the ±500µs travel of a standard servo
const DefaultUsPerRad = 1000 / math.Pi

// DefaultConfig returns the configuration of the reference leg: a 2.5/5.6
// leg tracing a unit circle once per second at 50Hz on GPIO14/15.
func DefaultConfig() *LegConfig {
	return &LegConfig{
		Geometry: GeometryConfig{
			UpperLength: 2.5,
			LowerLength: 5.6,
			HipZero:     0,
			KneeZero:    math.Pi / 2,
			KneeMode:    KneeCoupled,
		},
		Path: PathConfig{
			Kind:         PathCircle,
			CenterX:      2.75,
			CenterY:      -5.85,
			Radius:       1,
			Lift:         0.5,
			WavePeriodMS: 1000,
		},
		TickPeriodMS: 20,
		Hip: JointConfig{
			Pin:      14,
			CenterUS: 1500,
			UsPerRad: DefaultUsPerRad,
			Reversed: true,
			MinUS:    1000,
			MaxUS:    2000,
		},
		Knee: JointConfig{
			Pin:      15,
			CenterUS: 1500,
			UsPerRad: DefaultUsPerRad,
			MinUS:    1000,
			MaxUS:    2000,
		},
		Backend:        BackendPWM,
		DiagQueue:      64,
		TraceDumpAfter: 25,
	}
}

// Validate checks the configuration before the loop starts
func (c *LegConfig) Validate() error {
	if !(c.Geometry.UpperLength > 0) || !(c.Geometry.LowerLength > 0) {
		return ErrInvalidGeometry
	}
	if c.Geometry.KneeMode != KneeCoupled && c.Geometry.KneeMode != KneeInterior {
		return detail(ErrInvalidGeometry, "knee mode "+strconv.Quote(c.Geometry.KneeMode))
	}
	if c.TickPeriodMS == 0 {
		return ErrInvalidTick
	}
	if c.Path.WavePeriodMS == 0 || c.Path.WavePeriodMS%c.TickPeriodMS != 0 {
		return ErrInvalidWavePeriod
	}

	switch c.Path.Kind {
	case PathCircle:
		if c.Path.Radius < 0 {
			return detail(ErrInvalidPath, "negative radius")
		}
	case PathEllipse:
		if c.Path.Radius < 0 || c.Path.Lift < 0 {
			return detail(ErrInvalidPath, "negative radius")
		}
	case PathHold:
	default:
		return detail(ErrInvalidPath, "kind "+strconv.Quote(c.Path.Kind))
	}

	periodUS := float32(c.TickPeriodMS) * 1000
	for _, j := range []struct {
		name  string
		joint JointConfig
	}{{"hip", c.Hip}, {"knee", c.Knee}} {
		if err := j.joint.validate(periodUS); err != nil {
			return detail(ErrInvalidCalibration, j.name+": "+err.Error())
		}
	}
	if c.Hip.Pin == c.Knee.Pin {
		return detail(ErrInvalidCalibration, "hip and knee share pin "+strconv.FormatUint(uint64(c.Hip.Pin), 10))
	}

	switch c.Backend {
	case BackendPWM, BackendServo, BackendPIO:
	default:
		return detail(ErrInvalidBackend, strconv.Quote(c.Backend))
	}

	if c.DiagQueue < 1 {
		return ErrInvalidDiagQueue
	}
	return nil
}

func (j JointConfig) validate(periodUS float32) error {
	if !(j.UsPerRad > 0) {
		return errors.New("us_per_rad must be positive")
	}
	if !(j.MinUS < j.MaxUS) {
		return errors.New("empty pulse window")
	}
	if j.MinUS < 0 || j.MaxUS > periodUS {
		return errors.New("pulse window outside the PWM period")
	}
	if j.CenterUS < j.MinUS || j.CenterUS > j.MaxUS {
		return errors.New("center outside the pulse window")
	}
	return nil
}

// WaveTicks returns the number of control ticks per wave period
func (c *LegConfig) WaveTicks() uint32 {
	return c.Path.WavePeriodMS / c.TickPeriodMS
}

// Package control runs the fixed-period leg loop: each tick it takes the
// next point of the foot path, solves the joint angles and writes both servo
// channels.
//
// Errors never escape a tick. An unreachable target skips both writes and
// the servos hold their last position; a rejected write on one channel is
// logged and the other channel is still written.
package control

import (
	"errors"
	"strconv"

	"strider/core"
	"strider/leg/config"
	"strider/leg/ik"
	"strider/leg/trajectory"
	"strider/protocol"
)

// Ticker blocks until the next control period
type Ticker interface {
	Wait()
}

// Diagnostics receives human-readable records. Emit must not block.
type Diagnostics interface {
	Emit(level protocol.Level, tick uint32, text string)
}

// Stats counts tick outcomes
type Stats struct {
	Ticks       uint32
	Written     uint32 // Ticks where both channels accepted
	Unreachable uint32
	Failures    uint32 // Rejected channel writes
	Dumps       uint32
}

// Loop owns the leg, the phase counter and both channels. It is not safe for
// concurrent use; Tick and Run must be called from one goroutine.
type Loop struct {
	leg  ik.Leg
	path trajectory.Path

	hip     *core.PWMChannel
	knee    *core.PWMChannel
	hipCal  Calibration
	kneeCal Calibration

	periodUS uint32
	ticker   Ticker
	diag     Diagnostics

	phase Phase
	tick  uint32

	trace      bool
	ring       core.TraceRing
	dumpAfter  uint32
	failStreak uint32

	stats Stats
}

// New validates cfg and configures both channels on driver. Every failure is
// an *InfrastructureError.
func New(cfg *config.LegConfig, driver core.PWMDriver, ticker Ticker, diag Diagnostics) (*Loop, error) {
	if cfg == nil {
		return nil, &InfrastructureError{Component: "config", Err: ErrMissing}
	}
	if diag == nil {
		return nil, &InfrastructureError{Component: "diagnostics", Err: ErrMissing}
	}
	if ticker == nil {
		return nil, &InfrastructureError{Component: "ticker", Err: ErrMissing}
	}
	if driver == nil {
		return nil, &InfrastructureError{Component: "pwm driver", Err: core.ErrNoPWMDriver}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InfrastructureError{Component: "config", Err: err}
	}

	leg, err := LegFrom(cfg.Geometry)
	if err != nil {
		return nil, &InfrastructureError{Component: "geometry", Err: err}
	}

	waveTicks := cfg.WaveTicks()
	l := &Loop{
		leg:       leg,
		path:      PathFrom(cfg.Path, waveTicks),
		hipCal:    CalibrationFrom(cfg.Hip),
		kneeCal:   CalibrationFrom(cfg.Knee),
		periodUS:  cfg.TickPeriodMS * 1000,
		ticker:    ticker,
		diag:      diag,
		phase:     Phase{PeriodTicks: waveTicks},
		trace:     cfg.Trace,
		dumpAfter: cfg.TraceDumpAfter,
	}

	// Channels start with no pulse, which leaves the servos unpowered
	// until the first solved tick.
	cycle := core.TimerFromMS(cfg.TickPeriodMS)
	l.hip, err = core.NewPWMChannel(driver, Hip.String(), core.PWMPin(cfg.Hip.Pin), cycle, 0)
	if err != nil {
		return nil, &InfrastructureError{Component: "hip channel", Err: err}
	}
	l.knee, err = core.NewPWMChannel(driver, Knee.String(), core.PWMPin(cfg.Knee.Pin), cycle, 0)
	if err != nil {
		return nil, &InfrastructureError{Component: "knee channel", Err: err}
	}

	return l, nil
}

// Run waits for each period and runs one tick, until the firmware shuts down
func (l *Loop) Run() {
	for !core.IsShutdown() {
		l.ticker.Wait()
		l.Tick()
	}
}

// RunTicks runs n ticks, waiting for the ticker before each one
func (l *Loop) RunTicks(n uint32) {
	for i := uint32(0); i < n && !core.IsShutdown(); i++ {
		l.ticker.Wait()
		l.Tick()
	}
}

// Tick runs one control period without waiting
func (l *Loop) Tick() {
	tick := l.tick
	counter := l.phase.Counter
	target := l.path.Point(counter)

	angles, err := l.leg.Solve(target)
	if err != nil {
		l.stats.Unreachable++
		l.ring.Record(core.EvtUnreachable, tick, counter, uint32(target.Magnitude()*1000))
		l.diag.Emit(protocol.LevelError, tick, "unreachable "+formatPoint(target)+": "+err.Error())
	} else {
		hipPulse, hipErr := l.actuate(tick, Hip, l.hip, l.hipCal, angles.Hip)
		kneePulse, kneeErr := l.actuate(tick, Knee, l.knee, l.kneeCal, angles.Knee)

		event := uint8(core.EvtWritten)
		switch {
		case hipErr != nil && kneeErr != nil:
			event = core.EvtBothFail
		case hipErr != nil:
			event = core.EvtHipFail
		case kneeErr != nil:
			event = core.EvtKneeFail
		}
		l.ring.Record(event, tick, uint32(hipPulse), uint32(kneePulse))

		if event == core.EvtWritten {
			l.stats.Written++
			l.failStreak = 0
		} else {
			l.failStreak++
			if l.dumpAfter > 0 && l.failStreak == l.dumpAfter {
				l.dumpTrace(tick)
			}
		}

		if l.trace {
			l.diag.Emit(protocol.LevelInfo, tick, formatPoint(target)+
				" hip="+formatFloat(angles.Hip)+" knee="+formatFloat(angles.Knee))
		}
	}

	l.stats.Ticks++
	l.phase.Advance()
	l.tick++
}

// actuate writes one channel and returns the requested pulse. A rejection
// produces exactly one diagnostic.
func (l *Loop) actuate(tick uint32, joint Joint, ch *core.PWMChannel, cal Calibration, angle float32) (float32, error) {
	value, pulse, err := cal.Command(angle, ch.MaxValue(), l.periodUS)
	if err == nil {
		err = ch.Set(value)
	}
	if err != nil {
		l.stats.Failures++
		aerr := &ActuationError{Joint: joint, Pulse: pulse, Err: err}
		l.diag.Emit(protocol.LevelError, tick, aerr.Error())
		return pulse, aerr
	}
	return pulse, nil
}

func (l *Loop) dumpTrace(tick uint32) {
	l.stats.Dumps++
	l.ring.Dump(func(s string) {
		l.diag.Emit(protocol.LevelWarn, tick, s)
	})
}

// Stats returns the outcome counters
func (l *Loop) Stats() Stats {
	return l.stats
}

// Phase returns the current phase counter
func (l *Loop) Phase() Phase {
	return l.phase
}

// Trace returns the recent tick outcomes from oldest to newest
func (l *Loop) Trace() []core.TraceEvent {
	return l.ring.Events()
}

// Leg returns the solver geometry
func (l *Loop) Leg() ik.Leg {
	return l.leg
}

// Path returns the foot path
func (l *Loop) Path() trajectory.Path {
	return l.path
}

// IsActuation reports whether err is a per-channel write rejection
func IsActuation(err error) bool {
	var aerr *ActuationError
	return errors.As(err, &aerr)
}

func formatPoint(p ik.Cartesian) string {
	return "(" + formatFloat(p.X) + ", " + formatFloat(p.Y) + ")"
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}

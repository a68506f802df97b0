package core

import "time"

// TimerTicker delivers one wakeup per period from the timer schedule.
// Ticks that arrive while the previous one is still pending are merged,
// and a late dispatch is not caught up: the next wakeup is always at least
// one full period after the dispatch that fired.
type TimerTicker struct {
	timer  Timer
	period uint32
	fired  chan struct{}
}

// NewTimerTicker schedules a periodic timer that fires every periodTicks.
// ProcessTimers must be called regularly for the ticker to advance.
func NewTimerTicker(periodTicks uint32) *TimerTicker {
	t := &TimerTicker{
		period: periodTicks,
		fired:  make(chan struct{}, 1),
	}
	t.timer.WakeTime = GetTime() + periodTicks
	t.timer.Handler = t.fire
	ScheduleTimer(&t.timer)
	return t
}

func (t *TimerTicker) fire(timer *Timer) uint8 {
	select {
	case t.fired <- struct{}{}:
	default:
		// Previous tick not consumed yet
	}

	timer.WakeTime += t.period
	if !timerBefore(currentTime, timer.WakeTime) {
		timer.WakeTime = currentTime + t.period
	}
	return SF_RESCHEDULE
}

// Wait blocks until the next tick
func (t *TimerTicker) Wait() {
	<-t.fired
}

// Period returns the tick period in timer ticks
func (t *TimerTicker) Period() uint32 {
	return t.period
}

// TimeTicker adapts time.Ticker, which also drops ticks for slow receivers.
type TimeTicker struct {
	ticker *time.Ticker
}

// NewTimeTicker starts a ticker with the given period
func NewTimeTicker(period time.Duration) *TimeTicker {
	return &TimeTicker{ticker: time.NewTicker(period)}
}

// Wait blocks until the next tick
func (t *TimeTicker) Wait() {
	<-t.ticker.C
}

// Stop releases the underlying ticker
func (t *TimeTicker) Stop() {
	t.ticker.Stop()
}

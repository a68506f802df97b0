package control

// Phase is the position within one wave period, in ticks
type Phase struct {
	Counter     uint32
	PeriodTicks uint32
}

// Advance moves one tick forward, wrapping at the end of the period
func (p *Phase) Advance() {
	p.Counter++
	if p.Counter >= p.PeriodTicks {
		p.Counter = 0
	}
}

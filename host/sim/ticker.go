package sim

// InstantTicker never waits, so a simulation runs as fast as it can
type InstantTicker struct {
	Waits uint32
}

func (t *InstantTicker) Wait() {
	t.Waits++
}

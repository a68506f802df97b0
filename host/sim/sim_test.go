package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"strider/core"
	"strider/leg/config"
	"strider/leg/control"
	"strider/protocol"
)

func newLoop(t *testing.T, cfg *config.LegConfig) (*control.Loop, *Driver, *Diagnostics) {
	t.Helper()
	driver := NewDriver()
	diag := NewDiagnostics(nil)
	loop, err := control.New(cfg, driver, driver.Frame(nil), diag)
	if err != nil {
		t.Fatalf("control.New failed: %v", err)
	}
	return loop, driver, diag
}

func TestDriverSharedPeriod(t *testing.T) {
	d := NewDriver()
	cycle := core.TimerFromMS(20)
	if _, err := d.ConfigureHardwarePWM(1, cycle); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if d.GetMaxValue() != 20000 {
		t.Errorf("Expected max 20000, got %d", d.GetMaxValue())
	}
	if _, err := d.ConfigureHardwarePWM(2, core.TimerFromMS(10)); !errors.Is(err, core.ErrPWMNotConfigured) {
		t.Errorf("Expected mismatched period to fail, got %v", err)
	}
	if err := d.SetDutyCycle(3, 1500); !errors.Is(err, core.ErrPWMNotConfigured) {
		t.Errorf("Expected unconfigured pin to fail, got %v", err)
	}
	if err := d.SetDutyCycle(1, 20001); !errors.Is(err, core.ErrDutyOutOfRange) {
		t.Errorf("Expected overrange duty to fail, got %v", err)
	}
	if d.Rejected() != 2 {
		t.Errorf("Expected 2 rejected writes, got %d", d.Rejected())
	}
}

func TestSimulatedCycleFollowsPath(t *testing.T) {
	cfg := config.DefaultConfig()
	loop, driver, diag := newLoop(t, cfg)

	period := loop.Path().Period()
	loop.RunTicks(period)

	stats := loop.Stats()
	if stats.Written != period || stats.Unreachable != 0 || stats.Failures != 0 {
		t.Fatalf("Expected %d clean ticks, got %+v", period, stats)
	}
	if diag.Count(protocol.LevelError) != 0 {
		t.Errorf("Expected no error records, got %v", diag.Records())
	}

	actual := reconstruct(loop, driver, cfg)
	if len(actual) != int(period) {
		t.Fatalf("Expected %d reconstructed points, got %d", period, len(actual))
	}
	for i, p := range actual {
		if p.Tick != uint32(i) {
			t.Fatalf("point %d: expected tick %d, got %d", i, i, p.Tick)
		}
	}
	assertOnPath(t, loop, actual)
}

// The startup default write must not shift the reconstruction by a tick
func TestReconstructionStartsAtFirstTarget(t *testing.T) {
	cfg := config.DefaultConfig()
	loop, driver, _ := newLoop(t, cfg)

	if n := len(driver.Samples(core.PWMPin(cfg.Hip.Pin))); n != 0 {
		t.Fatalf("Expected startup writes excluded, got %d samples", n)
	}
	loop.RunTicks(1)

	actual := reconstruct(loop, driver, cfg)
	if len(actual) != 1 || actual[0].Tick != 0 {
		t.Fatalf("Expected one point for tick 0, got %+v", actual)
	}
	assertOnPath(t, loop, actual)
}

// A one-channel rejection drops that tick and leaves later ticks aligned
func TestReconstructionSkipsRejectedTicks(t *testing.T) {
	cfg := config.DefaultConfig()
	loop, driver, _ := newLoop(t, cfg)
	period := loop.Path().Period()
	knee := core.PWMPin(cfg.Knee.Pin)

	loop.RunTicks(10)
	driver.Fail(knee, errors.New("stuck"))
	loop.RunTicks(3)
	driver.Fail(knee, nil)
	loop.RunTicks(period - 13)

	if n := len(driver.Samples(core.PWMPin(cfg.Hip.Pin))); n != int(period) {
		t.Errorf("Expected the hip written every tick, got %d writes", n)
	}

	actual := reconstruct(loop, driver, cfg)
	if len(actual) != int(period)-3 {
		t.Fatalf("Expected %d reconstructed points, got %d", period-3, len(actual))
	}
	for _, p := range actual {
		if p.Tick >= 10 && p.Tick < 13 {
			t.Errorf("Expected tick %d left out", p.Tick)
		}
	}
	assertOnPath(t, loop, actual)
}

func reconstruct(loop *control.Loop, driver *Driver, cfg *config.LegConfig) []Point {
	pairs := driver.Pairs(core.PWMPin(cfg.Hip.Pin), core.PWMPin(cfg.Knee.Pin))
	return Reconstruct(loop.Leg(), control.CalibrationFrom(cfg.Hip), control.CalibrationFrom(cfg.Knee), pairs)
}

// Whole-microsecond pulses limit the reconstruction accuracy
func assertOnPath(t *testing.T, loop *control.Loop, actual []Point) {
	t.Helper()
	for _, p := range actual {
		want := loop.Path().Point(p.Tick)
		dx := float64(p.Foot.X - want.X)
		dy := float64(p.Foot.Y - want.Y)
		if math.Hypot(dx, dy) > 0.05 {
			t.Errorf("tick %d: foot at (%.3f, %.3f), target (%.3f, %.3f)",
				p.Tick, p.Foot.X, p.Foot.Y, want.X, want.Y)
		}
	}
}

func TestSimulatedKneeFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TraceDumpAfter = 3
	loop, driver, diag := newLoop(t, cfg)

	errStuck := errors.New("stuck")
	driver.Fail(core.PWMPin(cfg.Knee.Pin), errStuck)
	loop.RunTicks(5)

	stats := loop.Stats()
	if stats.Failures != 5 || stats.Written != 0 || stats.Dumps != 1 {
		t.Errorf("Expected 5 failures and one dump, got %+v", stats)
	}
	if n := len(driver.Samples(core.PWMPin(cfg.Hip.Pin))); n != 5 {
		t.Errorf("Expected the hip written every tick, got %d writes", n)
	}
	if pairs := driver.Pairs(core.PWMPin(cfg.Hip.Pin), core.PWMPin(cfg.Knee.Pin)); len(pairs) != 0 {
		t.Errorf("Expected no complete ticks, got %+v", pairs)
	}
	if diag.Count(protocol.LevelError) != 5 {
		t.Errorf("Expected one error record per failed write, got %d", diag.Count(protocol.LevelError))
	}
	if diag.Count(protocol.LevelWarn) == 0 {
		t.Error("Expected the trace dump as warnings")
	}

	driver.Fail(core.PWMPin(cfg.Knee.Pin), nil)
	loop.RunTicks(1)
	if loop.Stats().Written != 1 {
		t.Errorf("Expected recovery after the fault cleared, got %+v", loop.Stats())
	}
}

func TestInstantTickerCountsWaits(t *testing.T) {
	cfg := config.DefaultConfig()
	ticker := &InstantTicker{}
	loop, err := control.New(cfg, NewDriver(), ticker, NewDiagnostics(nil))
	if err != nil {
		t.Fatalf("control.New failed: %v", err)
	}
	loop.RunTicks(7)
	if ticker.Waits != 7 {
		t.Errorf("Expected 7 waits, got %d", ticker.Waits)
	}
}

func TestPlotWritesImage(t *testing.T) {
	cfg := config.DefaultConfig()
	loop, driver, _ := newLoop(t, cfg)
	loop.RunTicks(loop.Path().Period())

	actual := reconstruct(loop, driver, cfg)

	file := filepath.Join(t.TempDir(), "path.png")
	if err := Plot(loop.Path(), actual, file); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Expected image: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected a non-empty image")
	}
}

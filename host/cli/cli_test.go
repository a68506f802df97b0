package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"strider/leg/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigByExtension(t *testing.T) {
	yamlPath := writeFile(t, "leg.yaml", "tick_period_ms: 10\npath:\n  kind: hold\n")
	cfg, err := LoadConfig(yamlPath)
	if err != nil {
		t.Fatalf("LoadConfig yaml failed: %v", err)
	}
	if cfg.TickPeriodMS != 10 || cfg.Path.Kind != config.PathHold {
		t.Errorf("Expected yaml values, got tick=%d kind=%s", cfg.TickPeriodMS, cfg.Path.Kind)
	}

	jsonPath := writeFile(t, "leg.json", `{"trace": true}`)
	cfg, err = LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig json failed: %v", err)
	}
	if !cfg.Trace || cfg.TickPeriodMS != 20 {
		t.Errorf("Expected json override on top of defaults, got %+v", cfg)
	}
}

func TestLoadConfigEnvAndValidation(t *testing.T) {
	t.Setenv("STRIDER_TICK_PERIOD_MS", "7")
	if _, err := LoadConfig(""); !errors.Is(err, config.ErrInvalidWavePeriod) {
		t.Errorf("Expected 1000ms wave over 7ms ticks to be rejected, got %v", err)
	}

	t.Setenv("STRIDER_TICK_PERIOD_MS", "25")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TickPeriodMS != 25 {
		t.Errorf("Expected env override, got %d", cfg.TickPeriodMS)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

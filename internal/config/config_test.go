package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt != DefaultDt {
		t.Errorf("expected dt %v, got %v", DefaultDt, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if !cfg.Depletion {
		t.Error("depletion should default on")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -1 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"zero horizon", func(c *Config) { c.HistoryHorizon = 0 }},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"negative log interval", func(c *Config) { c.Output.LogInterval = -0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Control.PowerCtrl = true
	cfg.Control.PowerMW = 200
	cfg.Output.CSVPath = "out.csv"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !loaded.Control.PowerCtrl || loaded.Control.PowerMW != 200 {
		t.Error("control section did not round-trip")
	}
	if loaded.Output.CSVPath != "out.csv" {
		t.Error("output section did not round-trip")
	}
}

func TestLoad_InvalidRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: -0.01\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative dt")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("power-control")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Control.PowerCtrl || cfg.Control.PowerMW != 200.0 {
		t.Error("power-control preset should enable the power loop at 200 MW")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for name, cfg := range Presets {
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

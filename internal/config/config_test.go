package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.System.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.System.Integrator)
	}
	if cfg.System.Eta <= 0 {
		t.Error("eta should be positive")
	}
	if cfg.System.StopAge <= 0 {
		t.Error("stop_age should be positive")
	}
	if !cfg.System.Adaptive {
		t.Error("adaptive stepping should be on by default")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("mdwarf-ocean")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(cfg.Bodies))
	}
	if cfg.Bodies[1].SurfaceWaterTO != 5.0 {
		t.Errorf("expected 5 oceans, got %f", cfg.Bodies[1].SurfaceWaterTO)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) == 0 {
		t.Error("expected at least one preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for name, cfg := range Presets {
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s does not validate: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no bodies", func(c *Config) { c.Bodies = nil }, false},
		{"zero eta", func(c *Config) { c.System.Eta = 0 }, false},
		{"negative stop age", func(c *Config) { c.System.StopAge = -1 }, false},
		{"zero output interval", func(c *Config) { c.System.OutputInterval = 0 }, false},
		{"massless body", func(c *Config) { c.Bodies[0].MassSun = 0 }, false},
		{"no modules", func(c *Config) { c.Bodies[0].Modules = nil }, false},
		{"planet without orbit", func(c *Config) { c.Bodies[1].SemiAU = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("mdwarf-ocean")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("envelope-loss")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.System.Name != cfg.System.Name {
		t.Errorf("expected system %s, got %s", cfg.System.Name, loaded.System.Name)
	}
	if loaded.Bodies[1].EnvelopeEarth != cfg.Bodies[1].EnvelopeEarth {
		t.Errorf("envelope mass mismatch: %f vs %f", loaded.Bodies[1].EnvelopeEarth, cfg.Bodies[1].EnvelopeEarth)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Population.MaxBoxes != 600 {
		t.Errorf("max_boxes = %d, want 600", cfg.Population.MaxBoxes)
	}
	if cfg.Box.LifetimeTicks != 70 {
		t.Errorf("lifetime_ticks = %d, want 70", cfg.Box.LifetimeTicks)
	}
	if cfg.Grid.CellSize != 60 {
		t.Errorf("cell_size = %v, want 60", cfg.Grid.CellSize)
	}
	if cfg.Render.StrokeColor != (RGB{R: 139, G: 4, B: 7}) {
		t.Errorf("stroke_color = %+v, want {139 4 7}", cfg.Render.StrokeColor)
	}
	if cfg.Derived.SampleInterval != 16*time.Millisecond {
		t.Errorf("sample interval = %v, want 16ms", cfg.Derived.SampleInterval)
	}
	if cfg.Derived.EventInterval != 32*time.Millisecond {
		t.Errorf("event interval = %v, want 32ms", cfg.Derived.EventInterval)
	}
	if cfg.Derived.StatsTicks != 600 {
		t.Errorf("stats ticks = %d, want 600", cfg.Derived.StatsTicks)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "population:\n  max_boxes: 50\nspawn:\n  threshold: 3\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Population.MaxBoxes != 50 {
		t.Errorf("max_boxes = %d, want 50", cfg.Population.MaxBoxes)
	}
	if cfg.Spawn.Threshold != 3 {
		t.Errorf("threshold = %v, want 3", cfg.Spawn.Threshold)
	}
	// Untouched keys keep their defaults
	if cfg.Spawn.Interval != 4 {
		t.Errorf("interval = %d, want default 4", cfg.Spawn.Interval)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
		want    string
	}{
		{"zero cell size", "grid:\n  cell_size: 0\n", "grid.cell_size"},
		{"negative cap", "population:\n  max_boxes: -1\n", "population.max_boxes"},
		{"zero interval", "spawn:\n  interval: 0\n", "spawn.interval"},
		{"zero spacing scale", "box:\n  spacing_scale: 0\n", "box.spacing_scale"},
		{"speed max below threshold", "spawn:\n  speed_max: 2\n", "spawn.speed_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Ripple.Strength = 75

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot error: %v", err)
	}
	if loaded.Ripple.Strength != 75 {
		t.Errorf("ripple strength = %v, want 75", loaded.Ripple.Strength)
	}
}

func TestCloneAndRevalidate(t *testing.T) {
	base := Default()
	cp := base.Clone()
	cp.Pointer.SampleIntervalMS = 40
	cp.Render.StrokeColor.R = 1

	if base.Pointer.SampleIntervalMS == 40 || base.Render.StrokeColor.R == 1 {
		t.Fatal("clone shares state with the original")
	}
	if err := cp.Revalidate(); err != nil {
		t.Fatalf("Revalidate: %v", err)
	}
	if cp.Derived.SampleInterval != 40*time.Millisecond {
		t.Errorf("derived sample interval = %v, want 40ms", cp.Derived.SampleInterval)
	}

	cp.Grid.CellSize = 0
	if err := cp.Revalidate(); err == nil {
		t.Error("expected error for zero cell size")
	}
}

package ui

import (
	"testing"

	"github.com/pthm-cable/boxfield/config"
)

func TestTunablesAcceptTheirRange(t *testing.T) {
	base := config.Default()

	for _, tn := range DefaultTunables() {
		for _, v := range []float32{tn.Min, tn.Max} {
			next, err := ApplyTunable(base, tn, v)
			if err != nil {
				t.Errorf("%s=%v rejected: %v", tn.Label, v, err)
				continue
			}
			if got := tn.Get(next); got != v {
				t.Errorf("%s: set %v, read back %v", tn.Label, v, got)
			}
		}
	}
}

func TestTunablesStartInRange(t *testing.T) {
	base := config.Default()
	for _, tn := range DefaultTunables() {
		if v := tn.Get(base); v < tn.Min || v > tn.Max {
			t.Errorf("%s default %v outside slider range [%v, %v]", tn.Label, v, tn.Min, tn.Max)
		}
	}
}

func TestApplyTunableLeavesOriginal(t *testing.T) {
	base := config.Default()
	size := base.Box.Size

	var box Tunable
	for _, tn := range DefaultTunables() {
		if tn.Label == "Box size" {
			box = tn
		}
	}

	next, err := ApplyTunable(base, box, 33)
	if err != nil {
		t.Fatal(err)
	}
	if base.Box.Size != size {
		t.Errorf("original modified: size %v, want %v", base.Box.Size, size)
	}
	if next.Box.Size != 33 {
		t.Errorf("next size = %v, want 33", next.Box.Size)
	}
}

func TestApplyTunableRoundsAndClamps(t *testing.T) {
	base := config.Default()

	tests := []struct {
		label string
		in    float32
		want  float32
	}{
		{"Spawn interval", 3.6, 4},
		{"Spawn interval", 42, 10},
		{"Max boxes", 10, 50},
		{"Cell size", -5, 10},
		{"Spacing scale", 0, 10},
	}

	tunables := make(map[string]Tunable)
	for _, tn := range DefaultTunables() {
		tunables[tn.Label] = tn
	}

	for _, tt := range tests {
		tn := tunables[tt.label]
		next, err := ApplyTunable(base, tn, tt.in)
		if err != nil {
			t.Fatalf("%s=%v: %v", tt.label, tt.in, err)
		}
		if got := tn.Get(next); got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.label, tt.in, got, tt.want)
		}
	}
}

func TestApplyTunableRejectsInvalid(t *testing.T) {
	base := config.Default()
	base.Spawn.SpeedMax = 20

	var threshold Tunable
	for _, tn := range DefaultTunables() {
		if tn.Label == "Spawn threshold" {
			threshold = tn
		}
	}

	if _, err := ApplyTunable(base, threshold, 25); err == nil {
		t.Error("expected threshold above speed_max to be rejected")
	}
}

func TestTuningPanelContains(t *testing.T) {
	p := NewTuningPanel(config.Default(), 100, 50, 300)

	if p.Contains(150, 60) {
		t.Error("hidden panel should not capture the pointer")
	}
	p.Toggle()
	if !p.Contains(150, 60) {
		t.Error("visible panel should contain a point inside it")
	}
	if p.Contains(50, 60) {
		t.Error("point left of the panel reported inside")
	}
}

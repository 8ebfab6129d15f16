package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTuningFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write tuning file: %v", err)
	}
	return path
}

func TestNilTuningReturnsDefaults(t *testing.T) {
	var tuning *Tuning

	if got := tuning.GetCameraOffset(); got != DefaultCameraOffset {
		t.Errorf("GetCameraOffset() = %v, want %v", got, DefaultCameraOffset)
	}
	if got := tuning.GetMinLaneDistance(); got != DefaultMinLaneDistance {
		t.Errorf("GetMinLaneDistance() = %v, want %v", got, DefaultMinLaneDistance)
	}
	if got := tuning.GetWidthFilterSeconds(); got != DefaultWidthFilterSeconds {
		t.Errorf("GetWidthFilterSeconds() = %v, want %v", got, DefaultWidthFilterSeconds)
	}
	if got := tuning.GetBlendGate(); got != DefaultBlendGate {
		t.Errorf("GetBlendGate() = %v, want %v", got, DefaultBlendGate)
	}
}

func TestLoadTuningPartialOverride(t *testing.T) {
	path := writeTuningFile(t, "tuning.json", `{"camera_offset": 0.06, "blend_gate": 0.8}`)

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning() error = %v", err)
	}

	if got := tuning.GetCameraOffset(); got != 0.06 {
		t.Errorf("GetCameraOffset() = %v, want 0.06", got)
	}
	if got := tuning.GetBlendGate(); got != 0.8 {
		t.Errorf("GetBlendGate() = %v, want 0.8", got)
	}
	// Unset fields fall back to defaults.
	if got := tuning.GetLaneWidthMin(); got != DefaultLaneWidthMin {
		t.Errorf("GetLaneWidthMin() = %v, want default %v", got, DefaultLaneWidthMin)
	}
}

func TestLoadTuningRejectsNonJSONExtension(t *testing.T) {
	path := writeTuningFile(t, "tuning.yaml", `{}`)
	if _, err := LoadTuning(path); err == nil {
		t.Error("LoadTuning() accepted a non-.json file, want error")
	}
}

func TestLoadTuningRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"negative width min", `{"lane_width_min": -1}`},
		{"max below min", `{"lane_width_min": 3.0, "lane_width_max": 2.0}`},
		{"blend gate out of range", `{"blend_gate": 1.5}`},
		{"zero filter time constant", `{"width_filter_seconds": 0}`},
		{"negative clearance", `{"min_lane_distance": -0.1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTuningFile(t, "tuning.json", tc.contents)
			if _, err := LoadTuning(path); err == nil {
				t.Errorf("LoadTuning(%s) succeeded, want validation error", tc.contents)
			}
		})
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadTuning() on a missing file succeeded, want error")
	}
}

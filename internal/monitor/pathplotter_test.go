package monitor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathPlotterDisabledByDefault(t *testing.T) {
	pp := NewPathPlotter("")
	if pp.Enabled() {
		t.Error("Enabled() = true for empty output dir, want false")
	}
	pp.Sample(0, 3.2, 0.9, 0.1)
	n, err := pp.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Render() wrote %d plots when disabled, want 0", n)
	}
}

func TestPathPlotterRendersSeries(t *testing.T) {
	dir := t.TempDir()
	pp := NewPathPlotter(dir)

	for i := 0; i < 20; i++ {
		pp.Sample(i, 3.0+float64(i)*0.01, 0.75, float64(i)*0.002)
	}

	n, err := pp.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Render() = %d plots, want 3", n)
	}

	for _, name := range []string{"lane_width.png", "d_prob.png", "lateral_offset.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing plot %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("plot %s is empty", name)
		}
	}
}

func TestPathPlotterNoSamples(t *testing.T) {
	pp := NewPathPlotter(t.TempDir())
	n, err := pp.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Render() = %d plots with no samples, want 0", n)
	}
}

// Package monitor provides offline visualization of lane planner internals.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PathPlotter accumulates per-cycle planner outputs during a replay run and
// renders them as PNG time series afterwards. It does nothing unless given
// an output directory.
type PathPlotter struct {
	outputDir string

	cycles    []float64
	laneWidth []float64
	dProb     []float64
	firstY    []float64
}

// NewPathPlotter returns a plotter writing into outputDir. An empty
// outputDir disables sampling and rendering.
func NewPathPlotter(outputDir string) *PathPlotter {
	return &PathPlotter{outputDir: outputDir}
}

// Enabled reports whether the plotter will record samples.
func (pp *PathPlotter) Enabled() bool {
	return pp.outputDir != ""
}

// Sample records one replayed cycle's outputs. firstY is the corrected
// lateral offset at the near end of the path.
func (pp *PathPlotter) Sample(cycle int, laneWidth, dProb, firstY float64) {
	if !pp.Enabled() {
		return
	}
	pp.cycles = append(pp.cycles, float64(cycle))
	pp.laneWidth = append(pp.laneWidth, laneWidth)
	pp.dProb = append(pp.dProb, dProb)
	pp.firstY = append(pp.firstY, firstY)
}

// Render writes one PNG per recorded series and returns the number of
// plots written.
func (pp *PathPlotter) Render() (int, error) {
	if !pp.Enabled() || len(pp.cycles) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(pp.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create plot output dir: %w", err)
	}

	series := []struct {
		name   string
		yLabel string
		values []float64
	}{
		{"lane_width", "Lane Width (m)", pp.laneWidth},
		{"d_prob", "Combined Confidence", pp.dProb},
		{"lateral_offset", "Corrected Lateral Offset (m)", pp.firstY},
	}

	count := 0
	for _, s := range series {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Lane Planner - %s", s.yLabel)
		p.X.Label.Text = "Cycle"
		p.Y.Label.Text = s.yLabel

		pts := make(plotter.XYs, len(s.values))
		for i, v := range s.values {
			pts[i] = plotter.XY{X: pp.cycles[i], Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return count, fmt.Errorf("%s: %w", s.name, err)
		}
		p.Add(line)

		file := filepath.Join(pp.outputDir, fmt.Sprintf("%s.png", s.name))
		if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
			return count, fmt.Errorf("save %s: %w", file, err)
		}
		count++
	}
	return count, nil
}

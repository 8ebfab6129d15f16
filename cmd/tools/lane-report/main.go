// Package main renders an HTML report for a recorded lane planner run
// using go-echarts: lane width, combined confidence, and the corrected
// lateral offset per cycle.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	_ "modernc.org/sqlite"

	"github.com/openroad-data/lanefusion/internal/replay"
)

var (
	dbFile = flag.String("db", "", "SQLite cycle store to read")
	runID  = flag.String("run", "", "Run ID to report on (default: newest)")
	out    = flag.String("out", "lane-report.html", "Output HTML file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("lane-report: %v", err)
	}
}

func run() error {
	if *dbFile == "" {
		return fmt.Errorf("-db is required")
	}
	store, err := replay.Open(*dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	id := *runID
	if id == "" {
		runs, err := store.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("store %s has no runs", *dbFile)
		}
		id = runs[0]
	}

	recs, err := store.CyclesForRun(id)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("run %s has no cycles", id)
	}

	xAxis := make([]string, len(recs))
	width := make([]opts.LineData, len(recs))
	dProb := make([]opts.LineData, len(recs))
	lateral := make([]opts.LineData, len(recs))
	for i, rec := range recs {
		xAxis[i] = fmt.Sprintf("%d", rec.CycleIndex)
		width[i] = opts.LineData{Value: rec.LaneWidth}
		dProb[i] = opts.LineData{Value: rec.DProb}
		y := 0.0
		if len(rec.OutputPath) > 0 {
			y = rec.OutputPath[0].Y
		}
		lateral[i] = opts.LineData{Value: y}
	}

	page := components.NewPage()
	page.AddCharts(
		lineChart("Lane Width", "meters", id, xAxis, width),
		lineChart("Combined Confidence", "d_prob", id, xAxis, dProb),
		lineChart("Corrected Lateral Offset", "meters", id, xAxis, lateral),
	)

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	log.Printf("wrote report for run %s (%d cycles) to %s", id, len(recs), *out)
	return nil
}

func lineChart(title, yName, runID string, xAxis []string, data []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("run=%s", runID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries(title, data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

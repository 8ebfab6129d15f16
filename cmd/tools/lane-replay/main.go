// Package main provides an offline replay harness for the lane planner.
// It reads a recorded cycle log (JSONL or SQLite), replays every cycle
// through a fresh planner, and can verify determinism, render plots of the
// planner internals, and persist the replayed run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"github.com/openroad-data/lanefusion/internal/config"
	"github.com/openroad-data/lanefusion/internal/lane"
	"github.com/openroad-data/lanefusion/internal/monitor"
	"github.com/openroad-data/lanefusion/internal/replay"
	"github.com/openroad-data/lanefusion/internal/units"
)

var (
	logFile    = flag.String("log", "", "JSONL cycle log to replay")
	dbFile     = flag.String("db", "", "SQLite cycle store to read from / write to")
	runID      = flag.String("run", "", "Run ID to replay from the store (default: newest)")
	tuningFile = flag.String("tuning", "", "Optional planner tuning JSON")
	verify     = flag.Bool("verify", false, "Replay twice and diff the outputs")
	save       = flag.Bool("save", false, "Write the replayed cycles back to the store under a new run ID")
	plotDir    = flag.String("plot-dir", "", "Directory for planner time-series PNGs")
	speedUnits = flag.String("units", units.MPS, "Display units for speeds (mps, mph, kph)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("lane-replay: %v", err)
	}
}

func run() error {
	if (*logFile == "") == (*dbFile == "") {
		return fmt.Errorf("exactly one of -log or -db is required")
	}
	if !units.IsValid(*speedUnits) {
		return fmt.Errorf("invalid -units %q (valid: mps, mph, kph)", *speedUnits)
	}

	var tuning *config.Tuning
	if *tuningFile != "" {
		t, err := config.LoadTuning(*tuningFile)
		if err != nil {
			return err
		}
		tuning = t
	}

	recs, store, err := loadCycles()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	if len(recs) == 0 {
		return fmt.Errorf("no cycles to replay")
	}
	log.Printf("replaying %d cycles", len(recs))

	plotter := monitor.NewPathPlotter(*plotDir)
	replayed := replayAll(tuning, recs, plotter)

	if *verify {
		again := replayAll(tuning, recs, monitor.NewPathPlotter(""))
		if diff := cmp.Diff(replayed, again); diff != "" {
			return fmt.Errorf("replay is not deterministic (-first +second):\n%s", diff)
		}
		log.Printf("verify: %d cycles bit-identical across two replays", len(recs))
	}

	last := replayed[len(recs)-1]
	log.Printf("final cycle: v_ego=%s lane_width=%.2fm d_prob=%.3f",
		units.FormatSpeed(last.VEgo, *speedUnits), last.LaneWidth, last.DProb)

	if plotter.Enabled() {
		n, err := plotter.Render()
		if err != nil {
			return err
		}
		log.Printf("wrote %d plots to %s", n, *plotDir)
	}

	if *save {
		if store == nil {
			return fmt.Errorf("-save requires -db")
		}
		newRun, err := store.InsertCycles("", replayed)
		if err != nil {
			return err
		}
		log.Printf("saved replayed run %s", newRun)
	}
	return nil
}

// loadCycles reads the input records from whichever source was selected.
// The returned store is non-nil only for -db inputs.
func loadCycles() ([]replay.CycleRecord, *replay.Store, error) {
	if *logFile != "" {
		f, err := os.Open(*logFile)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		recs, err := replay.ReadLog(f)
		return recs, nil, err
	}

	store, err := replay.Open(*dbFile)
	if err != nil {
		return nil, nil, err
	}
	id := *runID
	if id == "" {
		runs, err := store.ListRuns()
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		if len(runs) == 0 {
			store.Close()
			return nil, nil, fmt.Errorf("store %s has no runs", *dbFile)
		}
		id = runs[0]
		log.Printf("using newest run %s", id)
	}
	recs, err := store.CyclesForRun(id)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return recs, store, nil
}

// replayAll runs every record through a fresh planner in order, sampling
// the plotter after each cycle.
func replayAll(tuning *config.Tuning, recs []replay.CycleRecord, plotter *monitor.PathPlotter) []replay.CycleRecord {
	p := lane.NewPlanner(tuning)
	out := make([]replay.CycleRecord, len(recs))
	for i := range recs {
		rec := recs[i]
		rec.OutputPath = nil
		rec.Replay(p)
		out[i] = rec

		firstY := 0.0
		if len(rec.OutputPath) > 0 {
			firstY = rec.OutputPath[0].Y
		}
		plotter.Sample(rec.CycleIndex, rec.LaneWidth, rec.DProb, firstY)
	}
	return out
}

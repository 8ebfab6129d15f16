package replay

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openroad-data/lanefusion/internal/lane"
)

// testRecord builds a minimal but well-formed cycle record.
func testRecord(idx int) CycleRecord {
	line := func(y float64) lane.LineGeometry {
		ll := lane.LineGeometry{
			T: make([]float64, lane.TrajectorySize),
			X: make([]float64, lane.TrajectorySize),
			Y: make([]float64, lane.TrajectorySize),
		}
		for i := range ll.T {
			ll.T[i] = float64(i) * 0.1
			ll.X[i] = float64(i)
			ll.Y[i] = y
		}
		return ll
	}
	return CycleRecord{
		CycleIndex: idx,
		MonoTime:   float64(idx) * lane.ModelPeriod,
		VEgo:       22.5,
		Curvature:  0.01,
		Model: &lane.ModelOutput{
			LaneLines:     []lane.LineGeometry{line(-5), line(-1.5), line(1.5), line(5)},
			LaneLineProbs: []float64{0.1, 0.9, 0.9, 0.1},
			LaneLineStds:  []float64{1, 0.1, 0.1, 1},
			RoadEdges:     []lane.LineGeometry{line(-2), line(2)},
			RoadEdgeStds:  []float64{0.1, 0.1},
			DesireState:   []float64{1, 0, 0, 0, 0, 0, 0, 0},
		},
		InputPath: []lane.PathPoint{{T: 0, Y: 0.2}, {T: 0.5, Y: 0.2}, {T: 1.0, Y: 0.2}},
	}
}

func TestLogRoundTrip(t *testing.T) {
	want := []CycleRecord{testRecord(0), testRecord(1), testRecord(2)}

	var buf bytes.Buffer
	if err := WriteLog(&buf, want); err != nil {
		t.Fatalf("WriteLog() error = %v", err)
	}
	got, err := ReadLog(&buf)
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLogSkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLog(&buf, []CycleRecord{testRecord(0)}); err != nil {
		t.Fatalf("WriteLog() error = %v", err)
	}
	buf.WriteString("\n\n")

	got, err := ReadLog(&buf)
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("ReadLog() returned %d records, want 1", len(got))
	}
}

func TestReadLogReportsBadLine(t *testing.T) {
	_, err := ReadLog(bytes.NewBufferString("{\"cycle_index\": 0}\nnot json\n"))
	if err == nil {
		t.Fatal("ReadLog() succeeded on malformed input, want error")
	}
}

func TestReplayFillsOutputs(t *testing.T) {
	rec := testRecord(0)
	p := lane.NewPlanner(nil)
	rec.Replay(p)

	if len(rec.OutputPath) != len(rec.InputPath) {
		t.Fatalf("OutputPath has %d points, want %d", len(rec.OutputPath), len(rec.InputPath))
	}
	// The input path must stay untouched; the planner works on a copy.
	for i, pt := range rec.InputPath {
		if pt.Y != 0.2 {
			t.Errorf("InputPath[%d].Y = %v, want 0.2 (unmodified)", i, pt.Y)
		}
	}
	if rec.DProb <= 0 || rec.DProb > 1 {
		t.Errorf("DProb = %v, want in (0, 1]", rec.DProb)
	}
	if rec.LaneWidth < 2.6 || rec.LaneWidth > 4.0 {
		t.Errorf("LaneWidth = %v, want in [2.6, 4.0]", rec.LaneWidth)
	}
}

func TestReplayDeterministic(t *testing.T) {
	run := func() []CycleRecord {
		p := lane.NewPlanner(nil)
		recs := []CycleRecord{testRecord(0), testRecord(1), testRecord(2)}
		for i := range recs {
			recs[i].Replay(p)
		}
		return recs
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("replay runs differ:\n%s", diff)
	}
}

// Package replay records and replays lane planner cycles for offline
// diagnostics. The planner itself stays a pure in-process computation; this
// package only captures its inputs and outputs.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/openroad-data/lanefusion/internal/lane"
)

// CycleRecord captures one planner invocation: everything needed to replay
// the cycle plus the outputs observed when it was recorded.
type CycleRecord struct {
	RunID      string  `json:"run_id,omitempty"`
	CycleIndex int     `json:"cycle_index"`
	MonoTime   float64 `json:"mono_time"`

	// Inputs
	VEgo      float64           `json:"v_ego"`
	Curvature float64           `json:"curvature"`
	Model     *lane.ModelOutput `json:"model"`
	InputPath []lane.PathPoint  `json:"input_path"`

	// Outputs, filled after the cycle ran
	OutputPath []lane.PathPoint `json:"output_path,omitempty"`
	DProb      float64          `json:"d_prob"`
	LaneWidth  float64          `json:"lane_width"`
}

// Replay runs the record's inputs through the planner and fills the output
// fields. The input path is not modified; the planner mutates a copy.
func (r *CycleRecord) Replay(p *lane.Planner) {
	p.ParseModel(r.Model)

	out := make([]lane.PathPoint, len(r.InputPath))
	copy(out, r.InputPath)
	p.UpdatePath(r.VEgo, r.Curvature, out)

	r.OutputPath = out
	r.DProb = p.DProb()
	r.LaneWidth = p.LaneWidth()
}

// ReadLog decodes a newline-delimited JSON cycle log. Blank lines are
// skipped so hand-edited logs with trailing newlines stay readable.
func ReadLog(r io.Reader) ([]CycleRecord, error) {
	var recs []CycleRecord
	scanner := bufio.NewScanner(r)
	// Cycle records carry full path geometry; allow long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec CycleRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cycle log: %w", err)
	}
	return recs, nil
}

// WriteLog encodes records as newline-delimited JSON.
func WriteLog(w io.Writer, recs []CycleRecord) error {
	enc := json.NewEncoder(w)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			return fmt.Errorf("encode cycle %d: %w", recs[i].CycleIndex, err)
		}
	}
	return nil
}

// Package lane fuses per-cycle lane-line and road-edge perception into a
// smoothed lateral offset for a candidate travel path.
//
// The package has exactly two operations, invoked in sequence once per
// perception cycle: ParseModel extracts the raw perception signals into the
// planner's geometry buffers, and UpdatePath blends that geometry with the
// current curvature estimate into a corrected lateral trajectory. All
// buffers are fixed size and reused across cycles; the only state that
// evolves between cycles is the smoothed lane-width estimate.
package lane

// TrajectorySize is the number of samples along the perceived trajectory.
// All geometry sequences produced by the perception model have this length.
const TrajectorySize = 33

// ModelPeriod is the perception model cycle time in seconds (20 Hz).
const ModelPeriod = 0.05

// Desire indexes the perception model's intent probability vector.
type Desire int

const (
	DesireNone Desire = iota
	DesireTurnLeft
	DesireTurnRight
	DesireLaneChangeLeft
	DesireLaneChangeRight
	DesireKeepLeft
	DesireKeepRight
)

// LineGeometry is one perceived boundary (lane line or road edge) sampled
// along the trajectory: T is the time axis, X forward distance, Y lateral
// offset. All three slices are expected to have TrajectorySize entries.
type LineGeometry struct {
	T []float64 `json:"t"`
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// ModelOutput is one perception inference result. Lane lines are reported
// outermost-left to outermost-right; the inner pair (indexes 1 and 2)
// bounds the current lane. Probs and Stds are indexed like LaneLines.
type ModelOutput struct {
	LaneLines     []LineGeometry `json:"lane_lines"`
	LaneLineProbs []float64      `json:"lane_line_probs"`
	LaneLineStds  []float64      `json:"lane_line_stds"`
	RoadEdges     []LineGeometry `json:"road_edges"`
	RoadEdgeStds  []float64      `json:"road_edge_stds"`
	DesireState   []float64      `json:"desire_state"`
}

// PathPoint is one time-stamped sample of the candidate travel path. The
// blender overwrites Y in place; T, X and Z pass through untouched.
type PathPoint struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

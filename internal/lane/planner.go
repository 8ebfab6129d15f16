package lane

import (
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/openroad-data/lanefusion/internal/config"
	"github.com/openroad-data/lanefusion/internal/filter"
)

const (
	// probCredit is how much of the model's raw detection probability
	// contributes to a boundary's weight. Geometry and reported
	// uncertainty are more reliable than the probability itself.
	probCredit = 0.4

	// edgeStdBias pulls road edges toward the lane interior by this
	// fraction of their reported standard deviation.
	edgeStdBias = 0.4

	// minTotalWeight is the combined weight at or below which the
	// planner considers both lane lines lost. Total uncertainty collapse
	// (both stds at or past stdFullDoubt with zero probability credit)
	// lands exactly on this value, so the comparison is inclusive with a
	// relative tolerance for the rounding in the ratio split.
	minTotalWeight = 0.01

	// stdFullDoubt is the reported standard deviation at which a lane
	// line's weight has collapsed to stdDoubtFloor.
	stdFullDoubt  = 0.8
	stdDoubtFloor = 0.01

	// stdLossKnee is the standard deviation above which the curve bias
	// toward that boundary starts getting damped; lossDampFloor bounds
	// how far the damping can cut it.
	stdLossKnee   = 0.5
	lossDampFloor = 0.25

	// curveSigmoidScale / Offset shape the curvature response. The
	// sigmoid is centered so zero curvature produces zero bias.
	curveSigmoidScale  = 4.0
	curveSigmoidOffset = -0.5
)

// Planner converts per-cycle lane perception into a corrected lateral path.
// It owns the extracted geometry buffers and the smoothed lane-width state;
// construct one per planning session and call ParseModel then UpdatePath
// once per perception cycle. Planner is not safe for concurrent use.
type Planner struct {
	// Extracted geometry, overwritten by ParseModel. llT is the shared
	// time axis, llX the shared forward distance; lllY/rllY are the inner
	// (current lane) line lateral offsets, leY/reY the road edges.
	llT  [TrajectorySize]float64
	llX  [TrajectorySize]float64
	lllY [TrajectorySize]float64
	rllY [TrajectorySize]float64
	leY  [TrajectorySize]float64
	reY  [TrajectorySize]float64

	lllProb float64
	rllProb float64
	lllStd  float64
	rllStd  float64

	lLaneChangeProb float64
	rLaneChangeProb float64

	// Smoothed state carried across cycles.
	widthFilter          *filter.FirstOrder
	laneWidth            float64
	laneChangeMultiplier float64
	dProb                float64

	cameraOffset    float64
	minLaneDistance float64
	laneWidthMin    float64
	laneWidthMax    float64
	blendGate       float64
	curveGain       float64

	// stdRamp maps a reported standard deviation onto a weight factor,
	// 1.0 at zero doubt down to stdDoubtFloor at stdFullDoubt and beyond.
	stdRamp interp.PiecewiseLinear
}

// NewPlanner constructs a Planner. A nil tuning means all defaults, which
// reproduce the shipped fusion behaviour exactly.
func NewPlanner(tuning *config.Tuning) *Planner {
	p := &Planner{
		widthFilter:          filter.NewFirstOrder(tuning.GetLaneWidthInit(), tuning.GetWidthFilterSeconds(), ModelPeriod),
		laneWidth:            tuning.GetLaneWidthInit(),
		laneChangeMultiplier: 1.0,
		cameraOffset:         tuning.GetCameraOffset(),
		minLaneDistance:      tuning.GetMinLaneDistance(),
		laneWidthMin:         tuning.GetLaneWidthMin(),
		laneWidthMax:         tuning.GetLaneWidthMax(),
		blendGate:            tuning.GetBlendGate(),
		curveGain:            tuning.GetCurveGain(),
	}
	// Two fixed, strictly increasing knots; Fit cannot fail here.
	_ = p.stdRamp.Fit([]float64{0, stdFullDoubt}, []float64{1.0, stdDoubtFloor})
	return p
}

// ParseModel extracts one perception result into the planner's geometry
// buffers. It never fails: a malformed lane-line set leaves the previous
// cycle's lane-line state in place, and malformed road edges fall back to
// the lane lines themselves.
func (p *Planner) ParseModel(md *ModelOutput) {
	if md == nil {
		return
	}

	if laneLinesValid(md) {
		left, right := md.LaneLines[1], md.LaneLines[2]
		for i := 0; i < TrajectorySize; i++ {
			p.llT[i] = (left.T[i] + right.T[i]) / 2
		}
		// Forward distances are defined identical for both inner lines.
		copy(p.llX[:], left.X)
		for i := 0; i < TrajectorySize; i++ {
			p.lllY[i] = left.Y[i] - p.cameraOffset
			p.rllY[i] = right.Y[i] - p.cameraOffset
		}
		p.lllProb = md.LaneLineProbs[1]
		p.rllProb = md.LaneLineProbs[2]
		p.lllStd = md.LaneLineStds[1]
		p.rllStd = md.LaneLineStds[2]
	}

	if roadEdgesValid(md) {
		for i := 0; i < TrajectorySize; i++ {
			p.leY[i] = md.RoadEdges[0].Y[i] + md.RoadEdgeStds[0]*edgeStdBias
			p.reY[i] = md.RoadEdges[1].Y[i] - md.RoadEdgeStds[1]*edgeStdBias
		}
	} else {
		// No usable edge signal: treat the lane line itself as the edge.
		p.leY = p.lllY
		p.reY = p.rllY
	}

	if len(md.DesireState) > int(DesireLaneChangeRight) {
		p.lLaneChangeProb = md.DesireState[DesireLaneChangeLeft]
		p.rLaneChangeProb = md.DesireState[DesireLaneChangeRight]
	}
}

func laneLinesValid(md *ModelOutput) bool {
	if len(md.LaneLines) != 4 || len(md.LaneLineProbs) < 3 || len(md.LaneLineStds) < 3 {
		return false
	}
	for _, i := range []int{1, 2} {
		ll := md.LaneLines[i]
		if len(ll.T) != TrajectorySize || len(ll.X) != TrajectorySize || len(ll.Y) != TrajectorySize {
			return false
		}
	}
	return true
}

func roadEdgesValid(md *ModelOutput) bool {
	if len(md.RoadEdges) != 2 || len(md.RoadEdgeStds) < 2 {
		return false
	}
	for _, e := range md.RoadEdges {
		if len(e.T) != TrajectorySize || len(e.Y) != TrajectorySize {
			return false
		}
	}
	return true
}

// UpdatePath blends the extracted lane geometry into the candidate path,
// overwriting each point's lateral coordinate in place. vEgo is the current
// vehicle speed in m/s and curvature the estimated path curvature; both are
// externally supplied each cycle. The smoothed lane width and the combined
// boundary confidence (DProb) are updated as side effects.
//
// When the combined boundary weight is below the blend gate, or the near
// end of the trajectory axis is not finite, the candidate path passes
// through unmodified except for the camera-offset correction, which is
// always applied.
func (p *Planner) UpdatePath(vEgo, curvature float64, path []PathPoint) {
	_ = vEgo // carried for the cycle log; the blend itself is speed independent

	// Weight each boundary by geometric closeness plus a fraction of the
	// model probability, collapsed by reported uncertainty.
	distance := p.rllY[0] - p.lllY[0]
	rightRatio := 0.5
	if math.Abs(distance) > 1e-9 {
		rightRatio = p.rllY[0] / distance
	}
	lWeight := (rightRatio + probCredit*p.lllProb) * p.stdRamp.Predict(p.lllStd)
	rWeight := ((1.0 - rightRatio) + probCredit*p.rllProb) * p.stdRamp.Predict(p.rllStd)

	total := lWeight + rWeight
	if total <= minTotalWeight*(1.0+1e-9) {
		// Complete lane blindness; fall through to the unmodified path.
		lWeight = 0
		rWeight = 0
	} else {
		lWeight /= total
		rWeight /= total
	}

	// Lane width: smooth the instantaneous measurement, but never use
	// more than was actually measured this cycle.
	currentWidth := clamp(
		math.Abs(math.Min(p.rllY[0], p.reY[0])-math.Max(p.lllY[0], p.leY[0])),
		p.laneWidthMin, p.laneWidthMax)
	p.widthFilter.Update(currentWidth)
	p.laneWidth = math.Min(p.widthFilter.Value(), currentWidth)

	// Ideal position is half a lane from either boundary. Whatever slack
	// remains beyond the minimum clearance bounds the curve bias.
	laneDistance := p.laneWidth * 0.5
	useMinDistance := math.Min(laneDistance, p.minLaneDistance)
	wiggleRoom := laneDistance - useMinDistance
	curvePrepare := 0.0
	if wiggleRoom > 0 {
		curvePrepare = clamp(p.curveGain*sigmoid(curvature, curveSigmoidScale, curveSigmoidOffset), -wiggleRoom, wiggleRoom)
	}

	// Don't bias toward a boundary that is about to disappear.
	if curvePrepare > 0 && p.rllStd > stdLossKnee {
		curvePrepare *= clamp(1.0-2.0*(p.rllStd-stdLossKnee), lossDampFloor, 1.0)
	} else if curvePrepare < 0 && p.lllStd > stdLossKnee {
		curvePrepare *= clamp(1.0-2.0*(p.lllStd-stdLossKnee), lossDampFloor, 1.0)
	}

	// Probabilistic OR: chance at least one boundary is trustworthy.
	p.dProb = lWeight + rWeight - lWeight*rWeight

	if isFinite(p.llT[0]) && lWeight+rWeight > p.blendGate {
		p.blendPath(lWeight, rWeight, laneDistance, curvePrepare, path)
	}

	// The model path is in the camera frame; re-center it last.
	for i := range path {
		path[i].Y += p.cameraOffset
	}
}

// blendPath resamples the weighted combination of the two boundary-derived
// candidate paths onto the caller's time axis and mixes it into the path
// according to the lane-change multiplier.
func (p *Planner) blendPath(lWeight, rWeight, laneDistance, curvePrepare float64, path []PathPoint) {
	// Gather the finite portion of the axis. The interpolator needs a
	// strictly increasing domain, so duplicated or backward samples are
	// dropped along with non-finite ones.
	axis := make([]float64, 0, TrajectorySize)
	laneY := make([]float64, 0, TrajectorySize)
	for i := 0; i < TrajectorySize; i++ {
		if !isFinite(p.llT[i]) {
			continue
		}
		if len(axis) > 0 && p.llT[i] <= axis[len(axis)-1] {
			continue
		}
		fromLeft := p.lllY[i] + laneDistance + curvePrepare
		fromRight := p.rllY[i] - laneDistance + curvePrepare
		axis = append(axis, p.llT[i])
		laneY = append(laneY, lWeight*fromLeft+rWeight*fromRight)
	}

	mix := func(i int, laneVal float64) {
		path[i].Y = p.laneChangeMultiplier*laneVal + (1.0-p.laneChangeMultiplier)*path[i].Y
	}

	if len(axis) == 1 {
		// A single finite sample holds its value over the whole path.
		for i := range path {
			mix(i, laneY[0])
		}
		return
	}
	if len(axis) < 2 {
		return
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(axis, laneY); err != nil {
		return
	}
	// Predict clamps to the boundary values outside [axis[0], axis[n-1]].
	for i := range path {
		mix(i, pl.Predict(path[i].T))
	}
}

// DProb returns the combined confidence from the last UpdatePath call that
// at least one lane boundary was usable.
func (p *Planner) DProb() float64 {
	return p.dProb
}

// LaneWidth returns the conservative lane-width estimate from the last
// UpdatePath call: the minimum of the smoothed and instantaneous widths.
func (p *Planner) LaneWidth() float64 {
	return p.laneWidth
}

// LaneChangeProbs returns the left and right lane-change intent
// probabilities from the last parsed model output.
func (p *Planner) LaneChangeProbs() (left, right float64) {
	return p.lLaneChangeProb, p.rLaneChangeProb
}

// SetLaneChangeMultiplier sets how much of the lane-centering output is
// mixed into the candidate path: 1 means full lane centering, 0 leaves the
// path untouched. Values are clamped to [0, 1]. Reserved for lane-change
// maneuvers; the planner holds it at 1 otherwise.
func (p *Planner) SetLaneChangeMultiplier(m float64) {
	p.laneChangeMultiplier = clamp(m, 0, 1)
}

// Package config loads tuning parameters for the lane fusion planner.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default tuning values. These reproduce the shipped planner behaviour;
// a tuning file only needs to name the fields it wants to change.
const (
	// DefaultCameraOffset is the lateral distance in meters from the
	// vehicle centerline to the camera. The model path is produced in the
	// camera frame and corrected back by this amount.
	DefaultCameraOffset = 0.04
	// DefaultMinLaneDistance is the minimum clearance in meters kept from
	// either lane boundary when biasing into a curve.
	DefaultMinLaneDistance = 1.3
	// DefaultLaneWidthMin / Max clamp the instantaneous width measurement.
	DefaultLaneWidthMin = 2.6
	DefaultLaneWidthMax = 4.0
	// DefaultLaneWidthInit seeds the smoothed width estimate.
	DefaultLaneWidthInit = 3.2
	// DefaultWidthFilterSeconds is the time constant of the width filter.
	DefaultWidthFilterSeconds = 9.95
	// DefaultBlendGate is the combined-weight threshold below which no
	// lane-based correction is applied.
	DefaultBlendGate = 0.9
	// DefaultCurveGain scales the curvature-anticipation bias.
	DefaultCurveGain = 0.7
)

// Tuning holds optional overrides for the planner defaults. All fields are
// pointer typed so a partial JSON file overrides only what it names; nil
// fields fall back to the defaults above. A nil *Tuning is valid and means
// all defaults.
type Tuning struct {
	CameraOffset       *float64 `json:"camera_offset,omitempty"`
	MinLaneDistance    *float64 `json:"min_lane_distance,omitempty"`
	LaneWidthMin       *float64 `json:"lane_width_min,omitempty"`
	LaneWidthMax       *float64 `json:"lane_width_max,omitempty"`
	LaneWidthInit      *float64 `json:"lane_width_init,omitempty"`
	WidthFilterSeconds *float64 `json:"width_filter_seconds,omitempty"`
	BlendGate          *float64 `json:"blend_gate,omitempty"`
	CurveGain          *float64 `json:"curve_gain,omitempty"`
}

// LoadTuning loads a Tuning from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	// Cap file size; tuning files are a handful of fields.
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("tuning file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	t := &Tuning{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that any set overrides are physically sensible.
func (t *Tuning) Validate() error {
	if t == nil {
		return nil
	}
	if t.LaneWidthMin != nil && *t.LaneWidthMin <= 0 {
		return fmt.Errorf("lane_width_min must be positive, got %f", *t.LaneWidthMin)
	}
	if t.LaneWidthMin != nil && t.LaneWidthMax != nil && *t.LaneWidthMax < *t.LaneWidthMin {
		return fmt.Errorf("lane_width_max (%f) must be >= lane_width_min (%f)", *t.LaneWidthMax, *t.LaneWidthMin)
	}
	if t.WidthFilterSeconds != nil && *t.WidthFilterSeconds <= 0 {
		return fmt.Errorf("width_filter_seconds must be positive, got %f", *t.WidthFilterSeconds)
	}
	if t.BlendGate != nil && (*t.BlendGate < 0 || *t.BlendGate > 1) {
		return fmt.Errorf("blend_gate must be between 0 and 1, got %f", *t.BlendGate)
	}
	if t.MinLaneDistance != nil && *t.MinLaneDistance < 0 {
		return fmt.Errorf("min_lane_distance must be non-negative, got %f", *t.MinLaneDistance)
	}
	return nil
}

func value(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetCameraOffset returns the camera offset override or its default.
func (t *Tuning) GetCameraOffset() float64 {
	if t == nil {
		return DefaultCameraOffset
	}
	return value(t.CameraOffset, DefaultCameraOffset)
}

// GetMinLaneDistance returns the minimum lane clearance or its default.
func (t *Tuning) GetMinLaneDistance() float64 {
	if t == nil {
		return DefaultMinLaneDistance
	}
	return value(t.MinLaneDistance, DefaultMinLaneDistance)
}

// GetLaneWidthMin returns the width clamp floor or its default.
func (t *Tuning) GetLaneWidthMin() float64 {
	if t == nil {
		return DefaultLaneWidthMin
	}
	return value(t.LaneWidthMin, DefaultLaneWidthMin)
}

// GetLaneWidthMax returns the width clamp ceiling or its default.
func (t *Tuning) GetLaneWidthMax() float64 {
	if t == nil {
		return DefaultLaneWidthMax
	}
	return value(t.LaneWidthMax, DefaultLaneWidthMax)
}

// GetLaneWidthInit returns the width filter seed or its default.
func (t *Tuning) GetLaneWidthInit() float64 {
	if t == nil {
		return DefaultLaneWidthInit
	}
	return value(t.LaneWidthInit, DefaultLaneWidthInit)
}

// GetWidthFilterSeconds returns the width filter time constant or its default.
func (t *Tuning) GetWidthFilterSeconds() float64 {
	if t == nil {
		return DefaultWidthFilterSeconds
	}
	return value(t.WidthFilterSeconds, DefaultWidthFilterSeconds)
}

// GetBlendGate returns the blend gate threshold or its default.
func (t *Tuning) GetBlendGate() float64 {
	if t == nil {
		return DefaultBlendGate
	}
	return value(t.BlendGate, DefaultBlendGate)
}

// GetCurveGain returns the curvature bias gain or its default.
func (t *Tuning) GetCurveGain() float64 {
	if t == nil {
		return DefaultCurveGain
	}
	return value(t.CurveGain, DefaultCurveGain)
}

// Package units provides speed unit constants and conversion for the
// replay and report surfaces. Planner inputs are always meters per second.
package units

import "fmt"

// Unit constants
const (
	MPS = "mps"
	MPH = "mph"
	KPH = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertSpeed converts a speed from meters per second to the target units
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.23694
	case KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// FormatSpeed renders a speed stored in m/s in the target units for display
func FormatSpeed(speedMPS float64, targetUnits string) string {
	return fmt.Sprintf("%.1f %s", ConvertSpeed(speedMPS, targetUnits), targetUnits)
}

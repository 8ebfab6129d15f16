package lane

import "math"

// clamp keeps num inside [minValue, maxValue].
func clamp(num, minValue, maxValue float64) float64 {
	return math.Max(math.Min(num, maxValue), minValue)
}

// sigmoid is a falling logistic: 1/(1+exp(x*scale)) + offset.
func sigmoid(x, scale, offset float64) float64 {
	return 1.0/(1.0+math.Exp(x*scale)) + offset
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Package filter provides the smoothing primitives used by the lane fusion
// planner.
package filter

// FirstOrder is a first-order low-pass filter (exponential moving average)
// with smoothing gain k = dt / (rc + dt), where rc is the time constant and
// dt the update period, both in seconds.
type FirstOrder struct {
	k float64
	x float64
}

// NewFirstOrder returns a filter seeded with initial and configured for
// updates every dt seconds with time constant rc.
func NewFirstOrder(initial, rc, dt float64) *FirstOrder {
	return &FirstOrder{
		k: dt / (rc + dt),
		x: initial,
	}
}

// Update folds one measurement into the filtered value and returns it.
func (f *FirstOrder) Update(v float64) float64 {
	f.x = (1.0-f.k)*f.x + f.k*v
	return f.x
}

// Value returns the current filtered value without updating it.
func (f *FirstOrder) Value() float64 {
	return f.x
}

// Reset discards the filter history and restarts from v.
func (f *FirstOrder) Reset(v float64) {
	f.x = v
}

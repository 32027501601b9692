package utils

// RollingWindow keeps the most recent samples of a measurement in a fixed ring.
type RollingWindow struct {
	data  []float64
	pos   int
	total int
}

// NewRollingWindow returns a window holding up to numSamples samples.
func NewRollingWindow(numSamples int) *RollingWindow {
	if numSamples < 1 {
		numSamples = 1
	}
	return &RollingWindow{data: make([]float64, numSamples)}
}

// NumSamples returns the capacity of the window.
func (rw *RollingWindow) NumSamples() int {
	return len(rw.data)
}

// Total returns how many samples were ever added.
func (rw *RollingWindow) Total() int {
	return rw.total
}

// Add records x, overwriting the oldest sample once the window is full.
func (rw *RollingWindow) Add(x float64) {
	rw.data[rw.pos] = x
	rw.pos++
	if rw.pos >= len(rw.data) {
		rw.pos = 0
	}
	rw.total++
}

// Values returns a copy of the samples currently held, oldest first.
func (rw *RollingWindow) Values() []float64 {
	if rw.total < len(rw.data) {
		return append([]float64(nil), rw.data[:rw.total]...)
	}
	out := make([]float64, 0, len(rw.data))
	out = append(out, rw.data[rw.pos:]...)
	return append(out, rw.data[:rw.pos]...)
}

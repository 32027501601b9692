package blob

import "fmt"

// Thresholds select the pixels that belong to blobs. A pixel qualifies when its luma is at least
// YLow and both of its chroma samples fall inside the inclusive U and V windows.
type Thresholds struct {
	YLow  uint8
	ULow  uint8
	UHigh uint8
	VLow  uint8
	VHigh uint8
}

func (t Thresholds) chromaIn(u, v uint8) bool {
	return u >= t.ULow && u <= t.UHigh && v >= t.VLow && v <= t.VHigh
}

// Empty reports whether no chroma value can ever qualify.
func (t Thresholds) Empty() bool {
	return t.ULow > t.UHigh || t.VLow > t.VHigh
}

func (t Thresholds) String() string {
	return fmt.Sprintf("y>=%d u=[%d,%d] v=[%d,%d]", t.YLow, t.ULow, t.UHigh, t.VLow, t.VHigh)
}

// ThresholdsFromYUV builds Thresholds from per-channel minimum and maximum values in Y, U, V
// order. Luma only has a floor, so max[0] is ignored.
func ThresholdsFromYUV(min, max [3]uint8) Thresholds {
	return Thresholds{YLow: min[0], ULow: min[1], UHigh: max[1], VLow: min[2], VHigh: max[2]}
}

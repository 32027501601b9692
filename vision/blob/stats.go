package blob

import (
	"image"
	"math"
)

// Stats are the aggregate statistics of a blob. Coordinates are inclusive.
type Stats struct {
	MinX  uint16
	MaxX  uint16
	MinY  uint16
	MaxY  uint16
	SumX  uint64
	SumY  uint64
	Count uint32
}

// emptyStats is the identity for add.
var emptyStats = Stats{MinX: math.MaxUint16, MinY: math.MaxUint16}

func (s *Stats) init(run Run, row int) {
	count := uint64(run.Width())
	s.MinX = run.Low
	s.MaxX = run.High - 1
	s.MinY = uint16(row)
	s.MaxY = uint16(row)
	s.SumX = count * (uint64(run.Low) + uint64(run.High) - 1) / 2
	s.SumY = uint64(row) * count
	s.Count = uint32(count)
}

// extend folds a single run on the given row into s.
func (s *Stats) extend(run Run, row int) {
	if run.Low < s.MinX {
		s.MinX = run.Low
	}
	if high := run.High - 1; high > s.MaxX {
		s.MaxX = high
	}
	if r := uint16(row); r < s.MinY {
		s.MinY = r
	}
	if r := uint16(row); r > s.MaxY {
		s.MaxY = r
	}
	count := uint64(run.Width())
	s.SumX += count * (uint64(run.Low) + uint64(run.High) - 1) / 2
	s.SumY += uint64(row) * count
	s.Count += uint32(count)
}

// add folds o into s.
func (s *Stats) add(o *Stats) {
	if o.MinX < s.MinX {
		s.MinX = o.MinX
	}
	if o.MaxX > s.MaxX {
		s.MaxX = o.MaxX
	}
	if o.MinY < s.MinY {
		s.MinY = o.MinY
	}
	if o.MaxY > s.MaxY {
		s.MaxY = o.MaxY
	}
	s.SumX += o.SumX
	s.SumY += o.SumY
	s.Count += o.Count
}

// Centroid returns the mean pixel position. It is (0, 0) for an empty blob.
func (s Stats) Centroid() (float64, float64) {
	if s.Count == 0 {
		return 0, 0
	}
	return float64(s.SumX) / float64(s.Count), float64(s.SumY) / float64(s.Count)
}

// Box returns the bounding box.
func (s Stats) Box() Box {
	return Box{MinX: s.MinX, MinY: s.MinY, MaxX: s.MaxX, MaxY: s.MaxY}
}

// Box is an inclusive bounding box in pixel coordinates.
type Box struct {
	MinX uint16
	MinY uint16
	MaxX uint16
	MaxY uint16
}

// Rectangle converts the box to a half-open image.Rectangle.
func (b Box) Rectangle() image.Rectangle {
	return image.Rect(int(b.MinX), int(b.MinY), int(b.MaxX)+1, int(b.MaxY)+1)
}

// BoxesFromCoords groups a flat min-x, min-y, max-x, max-y coordinate list into boxes. A
// trailing partial group is ignored.
func BoxesFromCoords(coords []uint16) []Box {
	boxes := make([]Box, 0, len(coords)/4)
	for i := 0; i+3 < len(coords); i += 4 {
		boxes = append(boxes, Box{MinX: coords[i], MinY: coords[i+1], MaxX: coords[i+2], MaxY: coords[i+3]})
	}
	return boxes
}

package objectdetection

import (
	"image"
	"slices"

	"github.com/samber/lo"
)

// Postprocessor defines a function that filters/modifies on an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewAreaFilter returns a function that filters out detections below a certain area.
func NewAreaFilter(area int) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Filter(in, func(d Detection, _ int) bool {
			return boxArea(d.BoundingBox()) >= area
		})
	}
}

// NewScoreFilter returns a function that filters out detections below a certain confidence.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Filter(in, func(d Detection, _ int) bool {
			return d.Score() >= conf
		})
	}
}

// NewOffsetPostprocessor returns a function that moves every detection by off, mapping boxes
// found in a cropped image back to the coordinates of the full image.
func NewOffsetPostprocessor(off image.Point) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Map(in, func(d Detection, _ int) Detection {
			return NewDetection(d.BoundingBox().Add(off), d.Score(), d.Label())
		})
	}
}

// NewLargestFilter returns a function that keeps the n detections with the largest boxes,
// largest first. Ties keep their input order.
func NewLargestFilter(n int) Postprocessor {
	return func(in []Detection) []Detection {
		out := slices.Clone(in)
		slices.SortStableFunc(out, func(a, b Detection) int {
			return boxArea(b.BoundingBox()) - boxArea(a.BoundingBox())
		})
		if n >= 0 && len(out) > n {
			out = out[:n]
		}
		return out
	}
}

// Chain applies the postprocessors in order.
func Chain(posts ...Postprocessor) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Reduce(posts, func(dets []Detection, p Postprocessor, _ int) []Detection {
			return p(dets)
		}, in)
	}
}

func boxArea(r *image.Rectangle) int {
	if r == nil {
		return 0
	}
	return r.Dx() * r.Dy()
}

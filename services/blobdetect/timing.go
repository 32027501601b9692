package blobdetect

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// TimingSummary summarizes how long the recent frames took to scan, in milliseconds.
type TimingSummary struct {
	// Frames and Failures count every frame since the service started.
	Frames   int
	Failures int
	// The rest cover only the most recent window of frames.
	Samples  int
	MeanMs   float64
	MedianMs float64
	P95Ms    float64
	MaxMs    float64
}

// TimingStats summarizes the recent frame timings.
func (s *Service) TimingStats() (TimingSummary, error) {
	s.timingMu.Lock()
	values := stats.Float64Data(s.timings.Values())
	summary := TimingSummary{Frames: s.timings.Total(), Failures: s.failures, Samples: len(values)}
	s.timingMu.Unlock()

	if len(values) == 0 {
		return summary, errors.New("no frames processed yet")
	}
	var err, errs error
	summary.MeanMs, err = values.Mean()
	errs = multierr.Append(errs, err)
	summary.MedianMs, err = values.Median()
	errs = multierr.Append(errs, err)
	summary.P95Ms, err = values.Percentile(95)
	errs = multierr.Append(errs, err)
	summary.MaxMs, err = values.Max()
	errs = multierr.Append(errs, err)
	return summary, errs
}

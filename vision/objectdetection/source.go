package objectdetection

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"go.viam.com/blobcam/utils"
)

// ImageSource produces the images a Source runs detection on. The release function, when not
// nil, is called once the image is no longer needed.
type ImageSource interface {
	Next(ctx context.Context) (image.Image, func(), error)
}

// Result holds everything the detector produced for one image.
type Result struct {
	OriginalImage image.Image
	Detections    []Detection
	Err           error
}

// Source pulls an image from src on every tick, runs the detector on it in the background and
// keeps the latest Result.
type Source struct {
	src     ImageSource
	det     Detector
	workers utils.StoppableWorkers

	mutex sync.RWMutex
	cache *Result
}

// NewSource runs the detector once synchronously, so the first Result is available right away,
// and then again every period as measured by clk.
func NewSource(src ImageSource, det Detector, period time.Duration, clk clock.Clock) (*Source, error) {
	if src == nil {
		return nil, errors.New("object detection source must include an image source to pull from")
	}
	if det == nil {
		return nil, errors.New("object detector function cannot be nil")
	}
	if period <= 0 {
		return nil, errors.Errorf("detection period must be positive, got %v", period)
	}
	if clk == nil {
		clk = clock.New()
	}

	s := &Source{src: src, det: det}
	s.cache = s.runPipeline(context.Background())
	if s.cache.Err != nil {
		return nil, s.cache.Err
	}

	ticker := clk.Ticker(period)
	s.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			r := s.runPipeline(ctx)
			if ctx.Err() != nil {
				return
			}
			s.mutex.Lock()
			s.cache = r
			s.mutex.Unlock()
		}
	})
	return s, nil
}

// Close stops the background detection.
func (s *Source) Close() {
	s.workers.Stop()
}

func (s *Source) runPipeline(ctx context.Context) *Result {
	r := &Result{}
	img, release, err := s.src.Next(ctx)
	if err != nil {
		r.Err = err
		return r
	}
	r.Detections, r.Err = s.det(ctx, img)
	if release != nil {
		// The cached image outlives the source's buffer.
		r.OriginalImage = imaging.Clone(img)
		release()
	} else {
		r.OriginalImage = img
	}
	return r
}

// Next returns the latest image overlaid with its detections.
func (s *Source) Next(ctx context.Context) (image.Image, func(), error) {
	res, err := s.NextResult(ctx)
	if err != nil {
		return nil, nil, err
	}
	return Overlay(res.OriginalImage, res.Detections), func() {}, nil
}

// NextResult returns the latest Result.
func (s *Source) NextResult(ctx context.Context) (*Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	r := s.cache
	return r, r.Err
}

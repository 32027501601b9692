// Package blobdetect owns one camera's blob detection: it scans each raw frame as it arrives,
// keeps the best bounding boxes of the latest frame, and writes them into each encoded JPEG.
//
// ProcessFrame is called by the frame-arrival goroutine and AnnotateJPEG by the encoder
// goroutine. Only the copy of the box buffer in and out is done under the box lock, so the
// encoder never waits for a scan.
package blobdetect

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/blobcam/config"
	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/rimage"
	"go.viam.com/blobcam/rimage/tifftags"
	"go.viam.com/blobcam/utils"
	"go.viam.com/blobcam/vision/blob"
)

// testImageLuma is the luma of the generated color-space test image.
const testImageLuma = 128

// boxColor is the YUV color of boxes drawn into frames (bright green).
var boxColor = color.YCbCr{Y: 150, Cb: 44, Cr: 21}

// Service detects color blobs in the frames of one camera.
type Service struct {
	logger    logging.Logger
	clk       clock.Clock
	width     int
	height    int
	minPixels int
	drawBoxes bool

	// detector and scratch are only touched by the frame-arrival goroutine.
	detector *blob.Detector
	scratch  []uint16

	paramsMu   sync.Mutex
	thresholds blob.Thresholds
	testImage  bool

	boxesMu   sync.Mutex
	boxes     []uint16
	numCoords int

	timingMu sync.Mutex
	timings  *utils.RollingWindow
	failures int
}

// New returns a service for frames of the configured size.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (*Service, error) {
	if err := cfg.Validate(cfg.ConfigFilePath); err != nil {
		return nil, err
	}
	o := options{clk: clock.New()}
	for _, opt := range opts {
		opt.apply(&o)
	}
	detector, err := blob.NewDetector(cfg.MaxRuns, cfg.MaxBlobs)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create blob detector")
	}
	detector.SetHighlight(cfg.Highlight)

	return &Service{
		logger:     logger,
		clk:        o.clk,
		width:      cfg.Width,
		height:     cfg.Height,
		minPixels:  cfg.MinPixelsPerBlob,
		drawBoxes:  cfg.DrawBoxes,
		detector:   detector,
		scratch:    make([]uint16, cfg.MaxBBoxes*4),
		thresholds: cfg.Thresholds(),
		testImage:  cfg.TestImage,
		boxes:      make([]uint16, cfg.MaxBBoxes*4),
		timings:    utils.NewRollingWindow(cfg.StatsWindow),
	}, nil
}

// SetThresholds changes the detection window starting with the next frame.
func (s *Service) SetThresholds(t blob.Thresholds) {
	s.paramsMu.Lock()
	defer s.paramsMu.Unlock()
	if s.thresholds != t {
		s.logger.Infow("detection window changed", "from", s.thresholds.String(), "to", t.String())
	}
	s.thresholds = t
}

// Thresholds returns the current detection window.
func (s *Service) Thresholds() blob.Thresholds {
	s.paramsMu.Lock()
	defer s.paramsMu.Unlock()
	return s.thresholds
}

// SetTestImage switches replacing every frame with the color-space test image.
func (s *Service) SetTestImage(enable bool) {
	s.paramsMu.Lock()
	defer s.paramsMu.Unlock()
	s.testImage = enable
}

// Reconfigure applies the live-tunable parts of a reloaded config.
func (s *Service) Reconfigure(cfg *config.Config) {
	s.SetThresholds(cfg.Thresholds())
	s.SetTestImage(cfg.TestImage)
}

// ProcessFrame scans one I420 frame and publishes its best bounding boxes. The frame may be
// modified in place by the test image, highlighting, or box drawing. When the frame cannot be
// scanned the published boxes are cleared and the error is returned.
func (s *Service) ProcessFrame(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := s.clk.Now()

	s.paramsMu.Lock()
	thresholds, testImage := s.thresholds, s.testImage
	s.paramsMu.Unlock()

	n, err := s.scan(data, thresholds, testImage)
	if err != nil {
		s.logger.Warnw("cannot detect blobs, reporting no boxes", "error", err)
		n = 0
	}

	s.boxesMu.Lock()
	s.numCoords = copy(s.boxes, s.scratch[:n])
	s.boxesMu.Unlock()

	elapsed := s.clk.Since(start)
	s.timingMu.Lock()
	s.timings.Add(float64(elapsed) / float64(time.Millisecond))
	if err != nil {
		s.failures++
	}
	s.timingMu.Unlock()

	s.logger.CDebugw(ctx, "frame processed", "boxes", n/4, "elapsed", elapsed)
	return err
}

func (s *Service) scan(data []byte, t blob.Thresholds, testImage bool) (int, error) {
	frame, err := rimage.WrapYUV420(s.width, s.height, data)
	if err != nil {
		return 0, err
	}
	if testImage {
		rimage.ColorSpaceTestImage(frame, testImageLuma)
	}
	if err := s.detector.Detect(frame, t); err != nil {
		return 0, err
	}
	n := s.detector.Forest().CopyBestBoundingBoxes(s.minPixels, s.scratch)
	if s.drawBoxes {
		rimage.DrawBoundingBoxesYUV(frame, s.scratch[:n], boxColor)
	}
	return n, nil
}

// BoundingBoxes returns a copy of the latest frame's boxes as min-x, min-y, max-x, max-y
// quadruples, largest blob first.
func (s *Service) BoundingBoxes() []uint16 {
	s.boxesMu.Lock()
	defer s.boxesMu.Unlock()
	return append([]uint16(nil), s.boxes[:s.numCoords]...)
}

// AnnotateJPEG writes the latest boxes into the APP1 header of an encoded frame. It returns the
// number of coordinates written. JPEGs without a usable APP1 header are left untouched.
func (s *Service) AnnotateJPEG(jpg []byte) (int, error) {
	s.boxesMu.Lock()
	defer s.boxesMu.Unlock()
	n, err := tifftags.Overwrite(uint32(s.width), uint32(s.height), s.boxes[:s.numCoords], jpg)
	if err != nil {
		s.logger.Debugw("jpeg left without bounding boxes", "error", err)
		return n, err
	}
	return n, nil
}

// Close logs the final timing summary.
func (s *Service) Close(ctx context.Context) error {
	summary, err := s.TimingStats()
	if err != nil {
		// Nothing was processed.
		return nil
	}
	s.logger.Infow("blob detection stopped", "frames", summary.Frames, "failures", summary.Failures,
		"mean_ms", summary.MeanMs, "p95_ms", summary.P95Ms)
	return nil
}

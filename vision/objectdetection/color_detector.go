package objectdetection

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/blobcam/rimage"
	"go.viam.com/blobcam/vision/blob"
)

// ColorDetectorConfig specifies a detector that finds blobs whose pixels fall inside a YUV
// color window.
type ColorDetectorConfig struct {
	// YUVMin and YUVMax hold the Y, U and V bounds. Only the luma floor is used.
	YUVMin        [3]uint8 `json:"detect_yuv_min"`
	YUVMax        [3]uint8 `json:"detect_yuv_max"`
	MinPixels     int      `json:"min_pixels_per_blob"`
	MaxDetections int      `json:"max_detections"`
	MaxRuns       int      `json:"max_runs,omitempty"`
	MaxBlobs      int      `json:"max_blobs,omitempty"`
	Label         string   `json:"label"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ColorDetectorConfig) Validate(path string) error {
	if cfg.Label == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "label")
	}
	if cfg.MinPixels < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("min_pixels_per_blob must not be negative, got %d", cfg.MinPixels))
	}
	if cfg.MaxDetections < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("max_detections must not be negative, got %d", cfg.MaxDetections))
	}
	if cfg.Thresholds().Empty() {
		return goutils.NewConfigValidationError(path, errors.Errorf("empty chroma window %v..%v", cfg.YUVMin, cfg.YUVMax))
	}
	return nil
}

// Thresholds returns the blob thresholds described by the config.
func (cfg *ColorDetectorConfig) Thresholds() blob.Thresholds {
	return blob.ThresholdsFromYUV(cfg.YUVMin, cfg.YUVMax)
}

// NewColorDetector returns a Detector reporting the largest blobs of the configured color. The
// score of a detection is the share of its bounding box covered by blob pixels. The returned
// Detector is safe for concurrent use; calls are serialized.
func NewColorDetector(cfg *ColorDetectorConfig) (Detector, error) {
	if err := cfg.Validate("detector"); err != nil {
		return nil, err
	}
	maxRuns, maxBlobs := cfg.MaxRuns, cfg.MaxBlobs
	if maxRuns == 0 {
		maxRuns = blob.DefaultMaxRuns
	}
	if maxBlobs == 0 {
		maxBlobs = blob.DefaultMaxBlobs
	}
	bd, err := blob.NewDetector(maxRuns, maxBlobs)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	thresholds := cfg.Thresholds()
	minPixels, maxDets, label := cfg.MinPixels, cfg.MaxDetections, cfg.Label
	return func(ctx context.Context, img image.Image) ([]Detection, error) {
		frame, err := rimage.YUV420FromImage(img)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mu.Lock()
		defer mu.Unlock()
		if err := bd.Detect(frame, thresholds); err != nil {
			return nil, err
		}
		offset := img.Bounds().Min
		blobs := bd.Forest().BestBlobs(minPixels, maxDets)
		dets := make([]Detection, 0, len(blobs))
		for _, b := range blobs {
			box := b.Stats.Box().Rectangle()
			score := float64(b.Stats.Count) / float64(box.Dx()*box.Dy())
			dets = append(dets, NewDetection(box.Add(offset), score, label))
		}
		return dets, nil
	}, nil
}

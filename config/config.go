// Package config defines the blob camera configuration file and how it is read, validated and
// watched for changes.
package config

import (
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/vision/blob"
	"go.viam.com/blobcam/vision/objectdetection"
)

const (
	// DefaultMinPixelsPerBlob is the smallest blob reported when the config does not say.
	DefaultMinPixelsPerBlob = 30
	// DefaultMaxBBoxes is the number of boxes embedded per frame when the config does not say.
	DefaultMaxBBoxes = 20
	// DefaultStatsWindow is the number of frame timings kept for statistics.
	DefaultStatsWindow = 100
)

// Config describes one blob camera.
type Config struct {
	ConfigFilePath string `json:"-"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// DetectYUVMin and DetectYUVMax are the Y, U and V bounds of the detection window. Luma only
	// has a floor; DetectYUVMax[0] is carried for the control protocol but never used.
	DetectYUVMin [3]uint8 `json:"detect_yuv_min"`
	DetectYUVMax [3]uint8 `json:"detect_yuv_max"`

	MinPixelsPerBlob int `json:"min_pixels_per_blob"`
	MaxBBoxes        int `json:"max_bboxes"`
	MaxRuns          int `json:"max_runs"`
	MaxBlobs         int `json:"max_blobs"`

	Highlight bool `json:"highlight"`
	DrawBoxes bool `json:"draw_boxes"`
	TestImage bool `json:"test_image"`

	ControlPort int    `json:"control_port"`
	StatsWindow int    `json:"stats_window"`
	LogLevel    string `json:"log_level"`
}

// ApplyDefaults fills every zero limit with its default.
func (cfg *Config) ApplyDefaults() {
	if cfg.MinPixelsPerBlob == 0 {
		cfg.MinPixelsPerBlob = DefaultMinPixelsPerBlob
	}
	if cfg.MaxBBoxes == 0 {
		cfg.MaxBBoxes = DefaultMaxBBoxes
	}
	if cfg.MaxRuns == 0 {
		cfg.MaxRuns = blob.DefaultMaxRuns
	}
	if cfg.MaxBlobs == 0 {
		cfg.MaxBlobs = blob.DefaultMaxBlobs
	}
	if cfg.StatsWindow == 0 {
		cfg.StatsWindow = DefaultStatsWindow
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Width == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "width")
	}
	if cfg.Height == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "height")
	}
	if cfg.Width < 0 || cfg.Height < 0 || cfg.Width%2 != 0 || cfg.Height%2 != 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("frame size must be positive and even, got %dx%d", cfg.Width, cfg.Height))
	}
	for field, v := range map[string]int{
		"min_pixels_per_blob": cfg.MinPixelsPerBlob,
		"max_bboxes":          cfg.MaxBBoxes,
		"max_runs":            cfg.MaxRuns,
		"max_blobs":           cfg.MaxBlobs,
		"stats_window":        cfg.StatsWindow,
	} {
		if v < 0 {
			return goutils.NewConfigValidationError(path, errors.Errorf("%s must not be negative, got %d", field, v))
		}
	}
	if cfg.ControlPort < 0 || cfg.ControlPort > 65535 {
		return goutils.NewConfigValidationError(path, errors.Errorf("control_port %d out of range", cfg.ControlPort))
	}
	if cfg.Thresholds().Empty() {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("detect_yuv_min %v is above detect_yuv_max %v", cfg.DetectYUVMin, cfg.DetectYUVMax))
	}
	if cfg.LogLevel != "" {
		if _, err := logging.LevelFromString(cfg.LogLevel); err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Thresholds returns the detection window as blob thresholds.
func (cfg *Config) Thresholds() blob.Thresholds {
	return blob.ThresholdsFromYUV(cfg.DetectYUVMin, cfg.DetectYUVMax)
}

// DetectorConfig returns the equivalent color detector configuration, for detecting blobs in
// arbitrary images.
func (cfg *Config) DetectorConfig() *objectdetection.ColorDetectorConfig {
	return &objectdetection.ColorDetectorConfig{
		YUVMin:        cfg.DetectYUVMin,
		YUVMax:        cfg.DetectYUVMax,
		MinPixels:     cfg.MinPixelsPerBlob,
		MaxDetections: cfg.MaxBBoxes,
		MaxRuns:       cfg.MaxRuns,
		MaxBlobs:      cfg.MaxBlobs,
		Label:         "blob",
	}
}

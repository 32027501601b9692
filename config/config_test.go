package config

import (
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/vision/blob"
)

func validConfig() Config {
	cfg := Config{
		Width:        640,
		Height:       480,
		DetectYUVMin: [3]uint8{100, 150, 150},
		DetectYUVMax: [3]uint8{255, 200, 200},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	test.That(t, cfg.MinPixelsPerBlob, test.ShouldEqual, DefaultMinPixelsPerBlob)
	test.That(t, cfg.MaxBBoxes, test.ShouldEqual, DefaultMaxBBoxes)
	test.That(t, cfg.MaxRuns, test.ShouldEqual, blob.DefaultMaxRuns)
	test.That(t, cfg.MaxBlobs, test.ShouldEqual, blob.DefaultMaxBlobs)
	test.That(t, cfg.StatsWindow, test.ShouldEqual, DefaultStatsWindow)

	cfg = Config{MaxBBoxes: 4}
	cfg.ApplyDefaults()
	test.That(t, cfg.MaxBBoxes, test.ShouldEqual, 4)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	test.That(t, cfg.Validate("cam"), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"missing width", func(c *Config) { c.Width = 0 }, `"width" is required`},
		{"missing height", func(c *Config) { c.Height = 0 }, `"height" is required`},
		{"odd width", func(c *Config) { c.Width = 641 }, "positive and even"},
		{"negative height", func(c *Config) { c.Height = -2 }, "positive and even"},
		{"negative count", func(c *Config) { c.MaxBlobs = -1 }, "max_blobs must not be negative"},
		{"port", func(c *Config) { c.ControlPort = 70000 }, "control_port 70000 out of range"},
		{"empty window", func(c *Config) { c.DetectYUVMin[1] = 201 }, "is above detect_yuv_max"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "loud"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(&cfg)
			err := cfg.Validate("cam")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errMsg)
		})
	}
}

func TestThresholdsAndDetectorConfig(t *testing.T) {
	cfg := validConfig()
	test.That(t, cfg.Thresholds(), test.ShouldResemble,
		blob.Thresholds{YLow: 100, ULow: 150, UHigh: 200, VLow: 150, VHigh: 200})

	dc := cfg.DetectorConfig()
	test.That(t, dc.YUVMin, test.ShouldResemble, cfg.DetectYUVMin)
	test.That(t, dc.MinPixels, test.ShouldEqual, DefaultMinPixelsPerBlob)
	test.That(t, dc.MaxDetections, test.ShouldEqual, DefaultMaxBBoxes)
	test.That(t, dc.Validate("cam"), test.ShouldBeNil)
}

func TestFromReader(t *testing.T) {
	logger := logging.NewTestLogger(t)

	cfg, err := FromReader("cam.json", strings.NewReader(`{
		"width": 320, "height": 240,
		"detect_yuv_min": [90, 140, 150],
		"detect_yuv_max": [255, 180, 210],
		"max_bboxes": 5,
		"control_port": 9000,
		"log_level": "debug"
	}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "cam.json")
	test.That(t, cfg.Width, test.ShouldEqual, 320)
	test.That(t, cfg.MaxBBoxes, test.ShouldEqual, 5)
	test.That(t, cfg.MinPixelsPerBlob, test.ShouldEqual, DefaultMinPixelsPerBlob)
	test.That(t, cfg.ControlPort, test.ShouldEqual, 9000)

	_, err = FromReader("cam.json", strings.NewReader(`{"width": `), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")

	_, err = FromReader("cam.json", strings.NewReader(`{"height": 240}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "width")
}

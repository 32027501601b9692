package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/blobcam/config"
	"go.viam.com/blobcam/logging"
)

// parseBlobYUV parses "Y0,Y1,U0,U1,V0,V1" into the minimum and maximum Y, U and V. Values above
// 255 are clamped.
func parseBlobYUV(s string) (yuvMin, yuvMax [3]uint8, err error) {
	fields := strings.Split(s, ",")
	if len(fields) != 6 {
		return yuvMin, yuvMax, errors.Errorf("--%s needs 6 comma separated values, got %q", flagBlobYUV, s)
	}
	var vals [6]uint8
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 {
			return yuvMin, yuvMax, errors.Errorf("--%s value %q is not a non-negative integer", flagBlobYUV, f)
		}
		vals[i] = uint8(min(v, 255))
	}
	return [3]uint8{vals[0], vals[2], vals[4]}, [3]uint8{vals[1], vals[3], vals[5]}, nil
}

// detectionConfig builds a config from the --config file, if any, overridden by the other
// detection flags. Width and height fall back to frameSize when neither file nor flags set them.
func detectionConfig(c *cli.Context, logger logging.Logger, frameSize func() (int, int, error)) (*config.Config, error) {
	var cfg config.Config
	if path := c.String(flagConfig); path != "" {
		read, err := config.Read(path, logger)
		if err != nil {
			return nil, err
		}
		cfg = *read
	} else {
		cfg.DetectYUVMax = [3]uint8{255, 255, 255}
	}

	if s := c.String(flagBlobYUV); s != "" {
		yuvMin, yuvMax, err := parseBlobYUV(s)
		if err != nil {
			return nil, err
		}
		cfg.DetectYUVMin, cfg.DetectYUVMax = yuvMin, yuvMax
	}
	if c.IsSet(flagWidth) {
		cfg.Width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		cfg.Height = c.Int(flagHeight)
	}
	if c.IsSet(flagMinPixels) {
		cfg.MinPixelsPerBlob = c.Int(flagMinPixels)
	}
	if c.IsSet(flagMaxBoxes) {
		cfg.MaxBBoxes = c.Int(flagMaxBoxes)
	}
	if (cfg.Width == 0 || cfg.Height == 0) && frameSize != nil {
		w, h, err := frameSize()
		if err != nil {
			return nil, err
		}
		cfg.Width, cfg.Height = w&^1, h&^1
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(flagConfig); err != nil {
		return nil, err
	}
	return &cfg, nil
}

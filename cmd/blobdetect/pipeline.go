package main

import (
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/blobcam/config"
	"go.viam.com/blobcam/vision/objectdetection"
)

// parseCrop parses "X0,Y0,X1,Y1" into a non-empty rectangle.
func parseCrop(s string) (image.Rectangle, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return image.Rectangle{}, errors.Errorf("--%s needs 4 comma separated values, got %q", flagCrop, s)
	}
	var vals [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 {
			return image.Rectangle{}, errors.Errorf("--%s value %q is not a non-negative integer", flagCrop, f)
		}
		vals[i] = v
	}
	r := image.Rect(vals[0], vals[1], vals[2], vals[3])
	if r.Min.X != vals[0] || r.Min.Y != vals[1] || r.Empty() {
		return image.Rectangle{}, errors.Errorf("--%s %q is empty or inverted", flagCrop, s)
	}
	return r, nil
}

// imagePipeline builds the detector used on still images: the color detector behind the
// optional crop and blur, followed by the score and area filters and the box limit. Boxes found
// in a crop are reported in the coordinates of the whole image.
func imagePipeline(c *cli.Context, cfg *config.Config) (objectdetection.Detector, error) {
	detCfg := cfg.DetectorConfig()
	// The limit is applied after filtering so filtered blobs make room for smaller ones.
	detCfg.MaxDetections = 0
	det, err := objectdetection.NewColorDetector(detCfg)
	if err != nil {
		return nil, err
	}

	var (
		preps []objectdetection.Preprocessor
		posts []objectdetection.Postprocessor
	)
	if s := c.String(flagCrop); s != "" {
		r, err := parseCrop(s)
		if err != nil {
			return nil, err
		}
		preps = append(preps, objectdetection.NewCropPreprocessor(r))
		posts = append(posts, objectdetection.NewOffsetPostprocessor(r.Min))
	}
	if sigma := c.Float64(flagBlur); sigma > 0 {
		preps = append(preps, objectdetection.NewBlurPreprocessor(sigma))
	}
	posts = append(posts,
		objectdetection.NewScoreFilter(c.Float64(flagMinScore)),
		objectdetection.NewAreaFilter(c.Int(flagMinArea)),
		objectdetection.NewLargestFilter(cfg.MaxBBoxes),
	)
	return objectdetection.Build(objectdetection.ComposePreprocessors(preps...), det, objectdetection.Chain(posts...))
}

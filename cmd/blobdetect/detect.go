package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	_ "github.com/xfmoulet/qoi" // register qoi
	goutils "go.viam.com/utils"

	"go.viam.com/blobcam/config"
	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/rimage"
	"go.viam.com/blobcam/services/blobdetect"
	"go.viam.com/blobcam/vision/blob"
	"go.viam.com/blobcam/vision/objectdetection"
)

func isRawYUV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".yuv")
}

func detectAction(c *cli.Context, logger logging.Logger) error {
	if c.NArg() == 0 {
		return errors.New("detect needs at least one input file")
	}
	if c.String(flagOutput) != "" && c.NArg() != 1 {
		return errors.Errorf("--%s needs exactly one input image", flagOutput)
	}
	if c.Duration(flagWatch) > 0 {
		if c.NArg() != 1 || isRawYUV(c.Args().First()) {
			return errors.Errorf("--%s needs exactly one input image", flagWatch)
		}
		path := c.Args().First()
		return errors.Wrapf(watchImage(c, logger, path), "%s", path)
	}
	for _, path := range c.Args().Slice() {
		var err error
		if isRawYUV(path) {
			err = detectStream(c, logger, path)
		} else {
			err = detectImage(c, logger, path)
		}
		if err != nil {
			return errors.Wrapf(err, "%s", path)
		}
	}
	return nil
}

func detectImage(c *cli.Context, logger logging.Logger, path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	cfg, err := detectionConfig(c, logger, func() (int, int, error) {
		return img.Bounds().Dx(), img.Bounds().Dy(), nil
	})
	if err != nil {
		return err
	}
	detector, err := imagePipeline(c, cfg)
	if err != nil {
		return err
	}
	dets, err := detector(c.Context, img)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(c.App.Writer, formatDetections(path, cfg, dets)); err != nil {
		return err
	}

	if out := c.String(flagOutput); out != "" {
		if err := imaging.Save(objectdetection.Overlay(img, dets), out); err != nil {
			return errors.Wrapf(err, "cannot save %q", out)
		}
		logger.Infow("wrote overlay", "path", out)
	}
	return nil
}

// formatDetections renders one image's detections the way detect prints them.
func formatDetections(path string, cfg *config.Config, dets []objectdetection.Detection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d blobs (%s)\n", path, len(dets), cfg.Thresholds())
	for i, d := range dets {
		fmt.Fprintf(&sb, "  %d: %v score %.2f\n", i, *d.BoundingBox(), d.Score())
	}
	return sb.String()
}

func detectStream(c *cli.Context, logger logging.Logger, path string) error {
	cfg, err := detectionConfig(c, logger, nil)
	if err != nil {
		return err
	}
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	reader, err := rimage.NewYUV420Reader(f, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	svc, err := blobdetect.New(cfg, logger)
	if err != nil {
		return err
	}
	frame, err := rimage.NewYUV420(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	for {
		if err := reader.ReadInto(frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := svc.ProcessFrame(c.Context, frame.Data); err != nil {
			return err
		}
		boxes := blob.BoxesFromCoords(svc.BoundingBoxes())
		fmt.Fprintf(c.App.Writer, "%s frame %d: %d blobs\n", path, reader.Frames()-1, len(boxes))
		for i, b := range boxes {
			fmt.Fprintf(c.App.Writer, "  %d: %v\n", i, b.Rectangle())
		}
	}
	return svc.Close(c.Context)
}

// boxCoords flattens detections into inclusive min-x, min-y, max-x, max-y quadruples.
func boxCoords(dets []objectdetection.Detection) []uint16 {
	coords := make([]uint16, 0, 4*len(dets))
	for _, d := range dets {
		r := d.BoundingBox()
		coords = append(coords, clampCoord(r.Min.X), clampCoord(r.Min.Y), clampCoord(r.Max.X-1), clampCoord(r.Max.Y-1))
	}
	return coords
}

func clampCoord(v int) uint16 {
	return uint16(min(max(v, 0), 0xFFFF))
}

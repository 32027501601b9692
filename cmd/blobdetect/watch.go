package main

import (
	"context"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/vision/objectdetection"
)

// fileSource reads its image file again on every call, so edits show up on the next tick.
type fileSource string

func (path fileSource) Next(ctx context.Context) (image.Image, func(), error) {
	img, err := imaging.Open(string(path))
	return img, nil, err
}

// watchImage keeps detecting blobs in the image at path every --watch period and prints the
// detections whenever they change, until interrupted.
func watchImage(c *cli.Context, logger logging.Logger, path string) error {
	period := c.Duration(flagWatch)
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
	det, err := imagePipeline(c, cfg)
	if err != nil {
		return err
	}

	clk := clock.New()
	src, err := objectdetection.NewSource(fileSource(path), det, period, clk)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ticker := clk.Ticker(period)
	defer ticker.Stop()

	var last string
	for {
		res, err := src.NextResult(ctx)
		var report string
		if err != nil {
			report = "error: " + err.Error()
		} else {
			report = formatDetections(path, cfg, res.Detections)
		}
		if report != last {
			last = report
			if err != nil {
				logger.Warnw("cannot detect blobs", "path", path, "error", err)
			} else {
				if _, err := c.App.Writer.Write([]byte(report)); err != nil {
					return err
				}
				if err := saveOverlay(ctx, c, logger, src); err != nil {
					return err
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// saveOverlay writes the source's latest image with its detections drawn to --output, if set.
func saveOverlay(ctx context.Context, c *cli.Context, logger logging.Logger, src *objectdetection.Source) error {
	out := c.String(flagOutput)
	if out == "" {
		return nil
	}
	overlay, release, err := src.Next(ctx)
	if err != nil {
		return err
	}
	defer release()
	if err := imaging.Save(overlay, out); err != nil {
		return errors.Wrapf(err, "cannot save %q", out)
	}
	logger.Infow("wrote overlay", "path", out)
	return nil
}

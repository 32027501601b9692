package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/rimage/tifftags"
)

func embedAction(c *cli.Context, logger logging.Logger) error {
	if c.NArg() != 2 {
		return errors.New("embed needs an input and an output JPEG")
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	jpg, err := os.ReadFile(in) //nolint:gosec
	if err != nil {
		return err
	}
	img, err := imaging.Decode(bytes.NewReader(jpg))
	if err != nil {
		return errors.Wrapf(err, "cannot decode %q", in)
	}
	size := img.Bounds().Size()
	cfg, err := detectionConfig(c, logger, func() (int, int, error) {
		return size.X, size.Y, nil
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

	annotated, err := tifftags.InsertAPP1(jpg, 4*cfg.MaxBBoxes)
	if err != nil {
		return errors.Wrapf(err, "cannot prepare %q", in)
	}
	n, err := tifftags.Overwrite(uint32(size.X), uint32(size.Y), boxCoords(dets), annotated)
	if err != nil {
		return errors.Wrapf(err, "cannot embed boxes in %q", in)
	}
	if err := os.WriteFile(out, annotated, 0o644); err != nil { //nolint:gosec
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: embedded %d boxes\n", out, n/4)
	return nil
}

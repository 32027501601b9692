package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/blobcam/config"
	"go.viam.com/blobcam/control"
	"go.viam.com/blobcam/logging"
	"go.viam.com/blobcam/rimage"
	"go.viam.com/blobcam/rimage/tifftags"
	"go.viam.com/blobcam/services/blobdetect"
)

func serveAction(c *cli.Context, logger logging.Logger) (err error) {
	if c.NArg() != 1 {
		return errors.New("serve needs one raw I420 stream, or - for stdin")
	}
	cfgPath := c.String(flagConfig)
	cfg, err := config.Read(cfgPath, logger)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		level, err := logging.LevelFromString(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in io.ReadCloser = os.Stdin
	if path := c.Args().First(); path != "-" {
		if in, err = os.Open(path); err != nil { //nolint:gosec
			return err
		}
	}
	// Unblocks a pending read when interrupted.
	context.AfterFunc(ctx, func() {
		//nolint:errcheck,gosec
		in.Close()
	})

	svc, err := blobdetect.New(cfg, logger.Sublogger("blobdetect"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, svc.Close(context.Background()))
	}()

	if cfg.ControlPort > 0 {
		srv, srvErr := control.NewServer(fmt.Sprintf(":%d", cfg.ControlPort), svc, logger.Sublogger("control"))
		if srvErr != nil {
			return srvErr
		}
		defer func() {
			err = multierr.Combine(err, srv.Close())
		}()
	}

	watcher, err := config.Watch(ctx, cfgPath, logger.Sublogger("config"), func(newCfg *config.Config) {
		if newCfg.Width != cfg.Width || newCfg.Height != cfg.Height {
			logger.Warnw("frame size changes need a restart", "width", newCfg.Width, "height", newCfg.Height)
		}
		svc.Reconfigure(newCfg)
	})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, watcher.Close())
	}()

	return serveFrames(ctx, logger, cfg, svc, in, c.String(flagJPEGDir))
}

// serveFrames scans every frame of in until it ends or ctx is done.
func serveFrames(
	ctx context.Context,
	logger logging.Logger,
	cfg *config.Config,
	svc *blobdetect.Service,
	in io.Reader,
	jpegDir string,
) error {
	reader, err := rimage.NewYUV420Reader(in, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	frame, err := rimage.NewYUV420(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	for ctx.Err() == nil {
		if err := reader.ReadInto(frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				break
			}
			return err
		}
		// A frame that fails to scan still gets encoded, with no boxes.
		//nolint:errcheck
		svc.ProcessFrame(ctx, frame.Data)
		if jpegDir == "" {
			continue
		}
		path := filepath.Join(jpegDir, fmt.Sprintf("frame_%06d.jpg", reader.Frames()-1))
		if err := writeAnnotatedJPEG(svc, frame, 4*cfg.MaxBBoxes, path); err != nil {
			return err
		}
	}
	logger.Infow("stream finished", "frames", reader.Frames())
	return nil
}

// writeAnnotatedJPEG encodes frame and stores the service's latest boxes in its header.
func writeAnnotatedJPEG(svc *blobdetect.Service, frame *rimage.YUV420, maxCoords int, path string) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame.YCbCr(), imaging.JPEG); err != nil {
		return errors.Wrap(err, "cannot encode frame")
	}
	jpg, err := tifftags.InsertAPP1(buf.Bytes(), maxCoords)
	if err != nil {
		return err
	}
	if _, err := svc.AnnotateJPEG(jpg); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, jpg, 0o644), "cannot write %q", path) //nolint:gosec
}

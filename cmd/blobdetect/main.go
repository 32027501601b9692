// Package main is the blobdetect command: it finds color blobs in images and raw I420 streams,
// embeds their bounding boxes into JPEG headers, and serves the live retuning channel.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/blobcam/logging"
)

const (
	// Flags.
	flagConfig    = "config"
	flagDebug     = "debug"
	flagLogFile   = "log-file"
	flagBlobYUV   = "blobyuv"
	flagWidth     = "width"
	flagHeight    = "height"
	flagMinPixels = "min-pixels"
	flagMaxBoxes  = "max-boxes"
	flagOutput    = "output"
	flagHighlight = "highlight"
	flagDrawBoxes = "draw-boxes"
	flagJPEGDir   = "jpeg-dir"
	flagCrop      = "crop"
	flagBlur      = "blur"
	flagMinScore  = "min-score"
	flagMinArea   = "min-area"
	flagWatch     = "watch"
)

func newApp() *cli.App {
	var (
		logger  logging.Logger
		logFile *logging.FileAppender
	)
	detectionFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load camera configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:  flagBlobYUV,
			Usage: "detection window as `Y0,Y1,U0,U1,V0,V1` (min Y, max Y, min U, max U, min V, max V)",
		},
		&cli.IntFlag{
			Name:  flagWidth,
			Usage: "frame width of raw .yuv input",
		},
		&cli.IntFlag{
			Name:  flagHeight,
			Usage: "frame height of raw .yuv input",
		},
		&cli.IntFlag{
			Name:  flagMinPixels,
			Usage: "smallest blob to report, in pixels",
		},
		&cli.IntFlag{
			Name:  flagMaxBoxes,
			Usage: "largest number of boxes to report per frame",
		},
	}

	// Only still images go through the crop, blur and filters.
	imageFlags := append(detectionFlags[:len(detectionFlags):len(detectionFlags)],
		&cli.StringFlag{
			Name:  flagCrop,
			Usage: "only search the region `X0,Y0,X1,Y1` of each image",
		},
		&cli.Float64Flag{
			Name:  flagBlur,
			Usage: "gaussian blur of `SIGMA` applied before detection",
		},
		&cli.Float64Flag{
			Name:  flagMinScore,
			Usage: "drop blobs scoring below `SCORE` (fraction of the box filled)",
		},
		&cli.IntFlag{
			Name:  flagMinArea,
			Usage: "drop blobs whose box covers fewer than `N` pixels",
		},
	)

	return &cli.App{
		Name:            "blobdetect",
		Usage:           "find color blobs and embed their bounding boxes in JPEGs",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Before: func(c *cli.Context) error {
			logger = logging.NewWriterLogger("blobdetect", c.App.ErrWriter)
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			if path := c.String(flagLogFile); path != "" {
				logFile = logging.NewFileAppender(path)
				logger.AddAppender(logFile)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if logger == nil {
				return nil
			}
			// Syncing a terminal fails on some platforms.
			goutils.UncheckedError(logger.Sync())
			if logFile != nil {
				return logFile.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "print the blobs found in images or raw I420 (.yuv) streams",
				ArgsUsage: "<file>...",
				Flags: append(imageFlags[:len(imageFlags):len(imageFlags)],
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write the single input image with its detections drawn to `FILE`",
					},
					&cli.DurationFlag{
						Name:  flagWatch,
						Usage: "detect again every `PERIOD` and print the blobs of the single input image when they change",
					},
				),
				Action: func(c *cli.Context) error {
					return detectAction(c, logger)
				},
			},
			{
				Name:      "embed",
				Usage:     "detect blobs in a JPEG and write a copy with the boxes in its APP1 header",
				ArgsUsage: "<in.jpg> <out.jpg>",
				Flags:     imageFlags,
				Action: func(c *cli.Context) error {
					return embedAction(c, logger)
				},
			},
			{
				Name:      "dump",
				Usage:     "print the bounding boxes embedded in JPEGs",
				ArgsUsage: "<file.jpg>...",
				Action:    dumpAction,
			},
			{
				Name:      "serve",
				Usage:     "run detection over a raw I420 stream with the control channel and config reloading",
				ArgsUsage: "<stream.yuv|->",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Usage:    "load camera configuration from `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagJPEGDir,
						Usage: "encode every frame as a JPEG with embedded boxes into `DIR`",
					},
				},
				Action: func(c *cli.Context) error {
					return serveAction(c, logger)
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

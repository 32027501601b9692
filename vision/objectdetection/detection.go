// Package objectdetection wraps blob detection behind a generic image detector API, with
// postprocessing filters, overlay drawing and a background detection source.
package objectdetection

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"go.viam.com/blobcam/rimage"
)

// Detection returns a bounding box around the object and a confidence score of the detection.
type Detection interface {
	BoundingBox() *image.Rectangle
	Score() float64
	Label() string
}

// Detector returns a slice of object detections from an input image.
type Detector func(context.Context, image.Image) ([]Detection, error)

// Preprocessor will apply processing to an input image before feeding it into the detector.
type Preprocessor func(image.Image) image.Image

// Build zips up a preprocessor-detector-postprocessor chain into one Detector. Only the
// detector is required.
func Build(prep Preprocessor, det Detector, post Postprocessor) (Detector, error) {
	if det == nil {
		return nil, errors.New("object detection pipeline must have a Detector")
	}
	if prep == nil {
		prep = func(img image.Image) image.Image { return img }
	}
	if post == nil {
		post = func(in []Detection) []Detection { return in }
	}
	return func(ctx context.Context, img image.Image) ([]Detection, error) {
		dets, err := det(ctx, prep(img))
		if err != nil {
			return nil, err
		}
		return post(dets), nil
	}, nil
}

// NewDetection creates a simple 2D detection.
func NewDetection(boundingBox image.Rectangle, score float64, label string) Detection {
	return &detection2D{boundingBox: boundingBox, score: score, label: label}
}

// detection2D is a simple struct for storing 2D detections.
type detection2D struct {
	boundingBox image.Rectangle
	score       float64
	label       string
}

// BoundingBox returns a bounding box around the detected object.
func (d *detection2D) BoundingBox() *image.Rectangle {
	return &d.boundingBox
}

// Score returns a confidence score of the detection between 0.0 and 1.0.
func (d *detection2D) Score() float64 {
	return d.score
}

// Label returns the class label of the object in the bounding box.
func (d *detection2D) Label() string {
	return d.label
}

func (d *detection2D) String() string {
	return fmt.Sprintf("Label: %s, Score: %.2f, Box: %v", d.label, d.score, d.boundingBox)
}

// overlayColor is the outline color used by Overlay.
var overlayColor = color.NRGBA{R: 255, A: 255}

// Overlay returns a color image with the bounding boxes and labels of the detections drawn on
// top of img.
func Overlay(img image.Image, dets []Detection) image.Image {
	dc := gg.NewContextForImage(img)
	for _, det := range dets {
		box := det.BoundingBox()
		if box == nil {
			continue
		}
		rimage.DrawRectangleEmpty(dc, *box, overlayColor, 2.0)
		text := fmt.Sprintf("%s: %.2f", det.Label(), det.Score())
		rimage.DrawString(dc, text, image.Point{box.Min.X, box.Min.Y - 20}, overlayColor, 16)
	}
	return dc.Image()
}

package objectdetection

import (
	"context"
	"image"
	"testing"

	"go.viam.com/test"
)

// newSquareImage returns a 64x48 dark gray image with a 20x20 orange-ish square at the origin.
func newSquareImage() *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, 64, 48), image.YCbCrSubsampleRatio420)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Y[img.YOffset(x, y)] = 50
			img.Cb[img.COffset(x, y)] = 128
			img.Cr[img.COffset(x, y)] = 128
		}
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Y[img.YOffset(x, y)] = 200
			img.Cb[img.COffset(x, y)] = 170
			img.Cr[img.COffset(x, y)] = 170
		}
	}
	return img
}

func testColorConfig() *ColorDetectorConfig {
	return &ColorDetectorConfig{
		YUVMin:        [3]uint8{100, 150, 150},
		YUVMax:        [3]uint8{255, 200, 200},
		MinPixels:     30,
		MaxDetections: 5,
		Label:         "orange",
	}
}

func TestColorDetector(t *testing.T) {
	det, err := NewColorDetector(testColorConfig())
	test.That(t, err, test.ShouldBeNil)

	dets, err := det(context.Background(), newSquareImage())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, dets[0].BoundingBox(), test.ShouldResemble, &image.Rectangle{image.Point{0, 0}, image.Point{20, 20}})
	test.That(t, dets[0].Score(), test.ShouldEqual, 1.0)
	test.That(t, dets[0].Label(), test.ShouldEqual, "orange")
}

func TestColorDetectorSubImage(t *testing.T) {
	det, err := NewColorDetector(testColorConfig())
	test.That(t, err, test.ShouldBeNil)

	sub := newSquareImage().SubImage(image.Rect(2, 2, 64, 48))
	dets, err := det(context.Background(), sub)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, dets[0].BoundingBox(), test.ShouldResemble, &image.Rectangle{image.Point{2, 2}, image.Point{20, 20}})
}

func TestColorDetectorMinPixels(t *testing.T) {
	cfg := testColorConfig()
	cfg.MinPixels = 401
	det, err := NewColorDetector(cfg)
	test.That(t, err, test.ShouldBeNil)
	dets, err := det(context.Background(), newSquareImage())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldBeEmpty)
}

func TestColorDetectorCancelled(t *testing.T) {
	det, err := NewColorDetector(testColorConfig())
	test.That(t, err, test.ShouldBeNil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = det(ctx, newSquareImage())
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestColorDetectorConfigValidate(t *testing.T) {
	cfg := testColorConfig()
	test.That(t, cfg.Validate("path"), test.ShouldBeNil)

	cfg.Label = ""
	err := cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "label")

	cfg = testColorConfig()
	cfg.YUVMin[1] = 210
	test.That(t, cfg.Validate("path"), test.ShouldNotBeNil)
	_, err = NewColorDetector(cfg)
	test.That(t, err, test.ShouldNotBeNil)

	cfg = testColorConfig()
	cfg.MinPixels = -1
	test.That(t, cfg.Validate("path"), test.ShouldNotBeNil)
}

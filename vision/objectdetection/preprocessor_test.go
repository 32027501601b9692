package objectdetection

import (
	"context"
	"image"
	"testing"

	"go.viam.com/test"
)

func TestCropPreprocessor(t *testing.T) {
	det, err := NewColorDetector(testColorConfig())
	test.That(t, err, test.ShouldBeNil)
	pipeline, err := Build(NewCropPreprocessor(image.Rect(10, 10, 64, 48)), det, nil)
	test.That(t, err, test.ShouldBeNil)

	dets, err := pipeline(context.Background(), newSquareImage())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, *dets[0].BoundingBox(), test.ShouldResemble, image.Rect(0, 0, 10, 10))
}

func TestBlurPreprocessor(t *testing.T) {
	img := newSquareImage()
	test.That(t, NewBlurPreprocessor(0)(img) == image.Image(img), test.ShouldBeTrue)

	blurred := NewBlurPreprocessor(1)(img)
	test.That(t, blurred.Bounds(), test.ShouldResemble, img.Bounds())

	det, err := NewColorDetector(testColorConfig())
	test.That(t, err, test.ShouldBeNil)
	dets, err := det(context.Background(), blurred)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 1)
	test.That(t, image.Pt(10, 10).In(*dets[0].BoundingBox()), test.ShouldBeTrue)
}

func TestComposePreprocessors(t *testing.T) {
	img := newSquareImage()
	crop := NewCropPreprocessor(image.Rect(10, 10, 40, 40))
	out := ComposePreprocessors(nil, crop, NewBlurPreprocessor(0))(img)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 30, 30))
	test.That(t, ComposePreprocessors()(img) == image.Image(img), test.ShouldBeTrue)
}

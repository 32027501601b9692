package objectdetection

import (
	"image"

	"github.com/disintegration/imaging"
)

// NewBlurPreprocessor returns a Preprocessor that smooths the image with a gaussian blur of the
// given sigma, which closes small luma gaps inside colored regions. The result keeps the size of
// the input and starts at the origin.
func NewBlurPreprocessor(sigma float64) Preprocessor {
	return func(img image.Image) image.Image {
		if sigma <= 0 {
			return img
		}
		return imaging.Blur(img, sigma)
	}
}

// NewCropPreprocessor returns a Preprocessor restricting detection to r. Detection coordinates
// are relative to the cropped image.
func NewCropPreprocessor(r image.Rectangle) Preprocessor {
	return func(img image.Image) image.Image {
		return imaging.Crop(img, r)
	}
}

// ComposePreprocessors applies the preprocessors in order, skipping nil ones.
func ComposePreprocessors(preps ...Preprocessor) Preprocessor {
	return func(img image.Image) image.Image {
		for _, p := range preps {
			if p != nil {
				img = p(img)
			}
		}
		return img
	}
}

package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// YUV420 is a planar 4:2:0 frame stored in a single buffer: the full resolution Y plane,
// followed by the U plane and then the V plane, each at half width and half height. This is the
// layout camera splitter ports hand over (I420).
type YUV420 struct {
	Width  int
	Height int
	Data   []byte
}

// YUV420Size returns the number of bytes a width x height frame occupies.
func YUV420Size(width, height int) int {
	pixels := width * height
	return pixels + pixels/2
}

func checkYUV420Dims(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("yuv420 dimensions must be positive, got %dx%d", width, height)
	}
	if width%2 != 0 || height%2 != 0 {
		return errors.Errorf("yuv420 dimensions must be even, got %dx%d", width, height)
	}
	return nil
}

// NewYUV420 allocates a zeroed frame.
func NewYUV420(width, height int) (*YUV420, error) {
	if err := checkYUV420Dims(width, height); err != nil {
		return nil, err
	}
	return &YUV420{Width: width, Height: height, Data: make([]byte, YUV420Size(width, height))}, nil
}

// WrapYUV420 wraps an existing buffer without copying it. Extra trailing bytes, such as
// stride padding at the end of a camera buffer, are ignored.
func WrapYUV420(width, height int, data []byte) (*YUV420, error) {
	if err := checkYUV420Dims(width, height); err != nil {
		return nil, err
	}
	size := YUV420Size(width, height)
	if len(data) < size {
		return nil, errors.Errorf("yuv420 buffer for %dx%d needs %d bytes, got %d", width, height, size, len(data))
	}
	return &YUV420{Width: width, Height: height, Data: data[:size]}, nil
}

// Validate checks that a frame built by hand has even, positive dimensions and a buffer large
// enough for them.
func (f *YUV420) Validate() error {
	if err := checkYUV420Dims(f.Width, f.Height); err != nil {
		return err
	}
	if size := YUV420Size(f.Width, f.Height); len(f.Data) < size {
		return errors.Errorf("yuv420 buffer for %dx%d needs %d bytes, got %d", f.Width, f.Height, size, len(f.Data))
	}
	return nil
}

// Bounds returns the frame rectangle.
func (f *YUV420) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Y returns the luma plane.
func (f *YUV420) Y() []byte {
	return f.Data[:f.Width*f.Height]
}

// U returns the first chroma plane.
func (f *YUV420) U() []byte {
	pixels := f.Width * f.Height
	return f.Data[pixels : pixels+pixels/4]
}

// V returns the second chroma plane.
func (f *YUV420) V() []byte {
	pixels := f.Width * f.Height
	return f.Data[pixels+pixels/4 : pixels+pixels/2]
}

// YRow returns luma row `row`.
func (f *YUV420) YRow(row int) []byte {
	return f.Data[row*f.Width : (row+1)*f.Width]
}

// URow returns the U samples shared by luma rows 2*chromaRow and 2*chromaRow+1.
func (f *YUV420) URow(chromaRow int) []byte {
	cols := f.Width / 2
	return f.U()[chromaRow*cols : (chromaRow+1)*cols]
}

// VRow returns the V samples shared by luma rows 2*chromaRow and 2*chromaRow+1.
func (f *YUV420) VRow(chromaRow int) []byte {
	cols := f.Width / 2
	return f.V()[chromaRow*cols : (chromaRow+1)*cols]
}

// At returns the Y, U and V values of the pixel at (x, y).
func (f *YUV420) At(x, y int) (uint8, uint8, uint8) {
	cx := x / 2
	return f.YRow(y)[x], f.URow(y / 2)[cx], f.VRow(y / 2)[cx]
}

// Clone returns a deep copy of the frame.
func (f *YUV420) Clone() *YUV420 {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return &YUV420{Width: f.Width, Height: f.Height, Data: data}
}

// YCbCr returns an image.YCbCr sharing memory with the frame.
func (f *YUV420) YCbCr() *image.YCbCr {
	return &image.YCbCr{
		Y:              f.Y(),
		Cb:             f.U(),
		Cr:             f.V(),
		YStride:        f.Width,
		CStride:        f.Width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           f.Bounds(),
	}
}

// YUV420FromImage converts any image to a new I420 frame. Odd trailing rows or columns are
// dropped so the result always has even dimensions. Chroma is averaged over each 2x2 block.
func YUV420FromImage(img image.Image) (*YUV420, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx()&^1, bounds.Dy()&^1
	frame, err := NewYUV420(width, height)
	if err != nil {
		return nil, err
	}

	if ycbcr, ok := img.(*image.YCbCr); ok && ycbcr.SubsampleRatio == image.YCbCrSubsampleRatio420 &&
		bounds.Min.X%2 == 0 && bounds.Min.Y%2 == 0 {
		for y := 0; y < height; y++ {
			off := ycbcr.YOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(frame.YRow(y), ycbcr.Y[off:off+width])
		}
		for cy := 0; cy < height/2; cy++ {
			off := ycbcr.COffset(bounds.Min.X, bounds.Min.Y+2*cy)
			copy(frame.URow(cy), ycbcr.Cb[off:off+width/2])
			copy(frame.VRow(cy), ycbcr.Cr[off:off+width/2])
		}
		return frame, nil
	}

	for cy := 0; cy < height/2; cy++ {
		uRow, vRow := frame.URow(cy), frame.VRow(cy)
		for cx := 0; cx < width/2; cx++ {
			var sumU, sumV int
			for dy := 0; dy < 2; dy++ {
				y := 2*cy + dy
				yRow := frame.YRow(y)
				for dx := 0; dx < 2; dx++ {
					x := 2*cx + dx
					c := color.YCbCrModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.YCbCr)
					yRow[x] = c.Y
					sumU += int(c.Cb)
					sumV += int(c.Cr)
				}
			}
			uRow[cx] = uint8((sumU + 2) / 4)
			vRow[cx] = uint8((sumV + 2) / 4)
		}
	}
	return frame, nil
}

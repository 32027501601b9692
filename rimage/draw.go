package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty draws the outline of the given rectangle into the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

// DrawBoxYUV draws the outline of the inclusive box (minX, minY)-(maxX, maxY) directly into the
// planes of an I420 frame. The box is clipped to the frame. Chroma is written at half
// resolution, so the outline is two luma pixels wide in color and one pixel wide in brightness.
func DrawBoxYUV(frame *YUV420, minX, minY, maxX, maxY int, c color.YCbCr) {
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= frame.Width {
		maxX = frame.Width - 1
	}
	if maxY >= frame.Height {
		maxY = frame.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	for _, y := range []int{minY, maxY} {
		yRow := frame.YRow(y)
		for x := minX; x <= maxX; x++ {
			yRow[x] = c.Y
		}
		uRow, vRow := frame.URow(y/2), frame.VRow(y/2)
		for x := minX / 2; x <= maxX/2; x++ {
			uRow[x] = c.Cb
			vRow[x] = c.Cr
		}
	}

	for y := minY; y <= maxY; y++ {
		yRow := frame.YRow(y)
		yRow[minX] = c.Y
		yRow[maxX] = c.Y
		uRow, vRow := frame.URow(y/2), frame.VRow(y/2)
		uRow[minX/2] = c.Cb
		uRow[maxX/2] = c.Cb
		vRow[minX/2] = c.Cr
		vRow[maxX/2] = c.Cr
	}
}

// DrawBoundingBoxesYUV draws every min-x, min-y, max-x, max-y quadruple of coords into frame.
func DrawBoundingBoxesYUV(frame *YUV420, coords []uint16, c color.YCbCr) {
	for i := 0; i+3 < len(coords); i += 4 {
		DrawBoxYUV(frame, int(coords[i]), int(coords[i+1]), int(coords[i+2]), int(coords[i+3]), c)
	}
}

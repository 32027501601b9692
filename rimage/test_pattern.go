package rimage

// ColorSpaceTestImage fills the frame with a calibration pattern: a square of side
// min(width, height) anchored at the origin whose luma is y and whose chroma sweeps U from 0
// to 255 left to right and V from 255 to 0 top to bottom. Everything outside the square is black
// with neutral chroma (128, 128).
func ColorSpaceTestImage(frame *YUV420, y uint8) {
	side := frame.Width
	if frame.Height < side {
		side = frame.Height
	}

	for row := 0; row < frame.Height; row++ {
		yRow := frame.YRow(row)
		for col := range yRow {
			if row < side && col < side {
				yRow[col] = y
			} else {
				yRow[col] = 0
			}
		}
	}

	stepsPerPixel := 256.0 / float64(side)
	for cy := 0; cy < frame.Height/2; cy++ {
		uRow, vRow := frame.URow(cy), frame.VRow(cy)
		for cx := range uRow {
			if cy < side/2 && cx < side/2 {
				uRow[cx] = limitByte(float64(2*cx) * stepsPerPixel)
				vRow[cx] = limitByte(float64(side-2*cy) * stepsPerPixel)
			} else {
				uRow[cx] = 128
				vRow[cx] = 128
			}
		}
	}
}

func limitByte(in float64) uint8 {
	rounded := int(in + 0.5)
	if rounded < 0 {
		return 0
	}
	if rounded > 255 {
		return 255
	}
	return uint8(rounded)
}

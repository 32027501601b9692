package blob

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/blobcam/rimage"
)

// Detector scans I420 frames for blobs. It owns the forest and the row buffers, so a Detector
// must only be used from one goroutine at a time.
type Detector struct {
	forest    *Forest
	highlight bool

	cols   int
	chroma []Run
	prev   []LumaRun
	cur    []LumaRun
}

// NewDetector returns a Detector whose forest holds maxRuns entries and maxBlobs roots.
func NewDetector(maxRuns, maxBlobs int) (*Detector, error) {
	forest, err := NewForest(maxRuns, maxBlobs)
	if err != nil {
		return nil, err
	}
	return &Detector{forest: forest}, nil
}

// SetHighlight turns on marking of detected pixels: while scanning, luma of qualifying pixels is
// doubled (clamped to 255) and every other luma value is halved, in place.
func (d *Detector) SetHighlight(highlight bool) {
	d.highlight = highlight
}

// Forest returns the forest populated by the last Detect call.
func (d *Detector) Forest() *Forest {
	return d.forest
}

func (d *Detector) ensureBuffers(cols int) {
	if d.cols == cols {
		return
	}
	d.cols = cols
	d.chroma = make([]Run, 0, maxChromaRuns(cols))
	d.prev = make([]LumaRun, 0, maxLumaRuns(cols))
	d.cur = make([]LumaRun, 0, maxLumaRuns(cols))
}

// DetectBytes wraps data as a cols x rows I420 frame and runs Detect on it.
func (d *Detector) DetectBytes(cols, rows int, data []byte, t Thresholds) error {
	frame, err := rimage.WrapYUV420(cols, rows, data)
	if err != nil {
		return errors.Wrap(err, "cannot detect blobs")
	}
	return d.Detect(frame, t)
}

// Detect resets the forest and fills it with the blobs of frame.
func (d *Detector) Detect(frame *rimage.YUV420, t Thresholds) error {
	if frame == nil {
		return errors.New("cannot detect blobs in a nil frame")
	}
	if err := frame.Validate(); err != nil {
		return errors.Wrap(err, "cannot detect blobs")
	}
	if frame.Width > maxDimension || frame.Height > maxDimension {
		return errors.Errorf("frame %dx%d exceeds the %d pixel limit", frame.Width, frame.Height, maxDimension)
	}
	d.forest.Reset()
	d.ensureBuffers(frame.Width)
	d.prev = d.prev[:0]

	for row := 0; row < frame.Height; row++ {
		if row%2 == 0 {
			// Chroma is shared by the even row and the odd row below it.
			d.chroma = FindChromaRuns(frame.URow(row/2), frame.VRow(row/2), frame.Width, t, d.chroma)
		}

		yRow := frame.YRow(row)
		d.cur = FindLumaRuns(yRow, t.YLow, d.chroma, d.cur)
		if d.highlight {
			highlightRow(yRow, d.cur)
		}

		d.forest.UnionRows(row, d.prev, d.cur)
		d.prev, d.cur = d.cur, d.prev
	}
	return nil
}

// maxDimension is the largest width or height whose run bounds fit the 16 bit statistics.
const maxDimension = math.MaxUint16

func highlightRow(yRow []byte, runs []LumaRun) {
	col := 0
	for _, run := range runs {
		for ; col < int(run.Low); col++ {
			yRow[col] /= 2
		}
		for ; col < int(run.High); col++ {
			if yRow[col] >= 128 {
				yRow[col] = 255
			} else {
				yRow[col] *= 2
			}
		}
	}
	for ; col < len(yRow); col++ {
		yRow[col] /= 2
	}
}

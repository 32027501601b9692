package rimage

import (
	"io"

	"github.com/pkg/errors"
)

// YUV420Reader reads consecutive raw I420 frames from a stream, such as a capture dumped by the
// camera splitter or a file written by YUV420Writer.
type YUV420Reader struct {
	r      io.Reader
	width  int
	height int
	frames int
}

// NewYUV420Reader returns a reader for width x height frames.
func NewYUV420Reader(r io.Reader, width, height int) (*YUV420Reader, error) {
	if err := checkYUV420Dims(width, height); err != nil {
		return nil, err
	}
	return &YUV420Reader{r: r, width: width, height: height}, nil
}

// Frames returns how many complete frames have been read.
func (yr *YUV420Reader) Frames() int {
	return yr.frames
}

// ReadInto fills dst with the next frame. It returns io.EOF when the stream ends cleanly on a
// frame boundary.
func (yr *YUV420Reader) ReadInto(dst *YUV420) error {
	if dst.Width != yr.width || dst.Height != yr.height {
		return errors.Errorf("frame is %dx%d but stream is %dx%d", dst.Width, dst.Height, yr.width, yr.height)
	}
	n, err := io.ReadFull(yr.r, dst.Data)
	switch {
	case errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.Wrapf(err, "partial frame %d (%d of %d bytes)", yr.frames, n, len(dst.Data))
	case err != nil:
		return errors.Wrapf(err, "reading frame %d", yr.frames)
	}
	yr.frames++
	return nil
}

// Next reads the next frame into a newly allocated buffer.
func (yr *YUV420Reader) Next() (*YUV420, error) {
	frame, err := NewYUV420(yr.width, yr.height)
	if err != nil {
		return nil, err
	}
	if err := yr.ReadInto(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// YUV420Writer appends raw frames to a stream.
type YUV420Writer struct {
	w io.Writer
}

// NewYUV420Writer returns a writer appending frames to w.
func NewYUV420Writer(w io.Writer) *YUV420Writer {
	return &YUV420Writer{w: w}
}

// Write appends one frame.
func (yw *YUV420Writer) Write(frame *YUV420) error {
	_, err := yw.w.Write(frame.Data)
	return errors.Wrap(err, "writing yuv420 frame")
}

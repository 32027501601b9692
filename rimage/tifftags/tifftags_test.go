package tifftags

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"testing"

	"github.com/arloliu/mebo/endian"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

var emptyJPEG = []byte{0xFF, 0xD8, 0xFF, 0xD9}

func newSegment(t *testing.T, maxCoords int) []byte {
	t.Helper()
	buf, err := InsertAPP1(emptyJPEG, maxCoords)
	test.That(t, err, test.ShouldBeNil)
	return buf
}

func TestOverwriteLayout(t *testing.T) {
	buf := newSegment(t, 6)
	test.That(t, buf, test.ShouldHaveLength, 74+2)
	for i := TIFFOffset; i < 74; i++ {
		buf[i] = 0xAA
	}

	n, err := Overwrite(640, 480, []uint16{10, 10, 50, 50}, buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 4)

	test.That(t, buf[:TIFFOffset], test.ShouldResemble, []byte{
		0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x46, 'E', 'x', 'i', 'f', 0x00, 0x00,
	})
	test.That(t, buf[TIFFOffset:74], test.ShouldResemble, []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x03,
		0x01, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x02, 0x80,
		0x01, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0xE0,
		0x96, 0x96, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x32,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x0A, 0x00, 0x0A, 0x00, 0x32, 0x00, 0x32,
		0x00, 0x00, 0x00, 0x00,
	})
	test.That(t, buf[74:], test.ShouldResemble, []byte{0xFF, 0xD9})
}

func TestOverwriteTruncatesToWholeBoxes(t *testing.T) {
	buf := newSegment(t, 6)
	capacity, err := Capacity(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, capacity, test.ShouldEqual, 6)

	n, err := Overwrite(8, 8, []uint16{1, 2, 3, 4, 5, 6, 7, 8}, buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 4)

	h, err := Parse(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Coords, test.ShouldResemble, []uint16{1, 2, 3, 4})

	n, err = Overwrite(8, 8, []uint16{1, 2, 3}, buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 0)
	h, err = Parse(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Coords, test.ShouldBeEmpty)
	test.That(t, buf[TIFFOffset+DataOffset:74], test.ShouldResemble, make([]byte, 12))
}

func TestOverwriteFailures(t *testing.T) {
	notApp1 := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	n, err := Overwrite(1, 1, nil, notApp1)
	test.That(t, n, test.ShouldEqual, -1)
	test.That(t, errors.Is(err, ErrNotAPP1), test.ShouldBeTrue)

	n, err = Overwrite(1, 1, nil, []byte{0xFF})
	test.That(t, n, test.ShouldEqual, -1)
	test.That(t, errors.Is(err, ErrNotAPP1), test.ShouldBeTrue)

	// A segment one byte short of the fixed header.
	small := make([]byte, 61)
	copy(small, []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 57})
	before := append([]byte(nil), small...)
	n, err = Overwrite(1, 1, []uint16{1, 2, 3, 4}, small)
	test.That(t, n, test.ShouldEqual, -1)
	test.That(t, errors.Is(err, ErrHeaderTooSmall), test.ShouldBeTrue)
	test.That(t, small, test.ShouldResemble, before)

	// Exactly the fixed header: valid, no room for coordinates.
	exact := make([]byte, 62)
	copy(exact, []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 58})
	n, err = Overwrite(1, 1, []uint16{1, 2, 3, 4}, exact)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 0)

	truncated := newSegment(t, 20)[:40]
	before = append([]byte(nil), truncated...)
	n, err = Overwrite(1, 1, []uint16{1, 2, 3, 4}, truncated)
	test.That(t, n, test.ShouldEqual, -1)
	test.That(t, errors.Is(err, ErrShortBuffer), test.ShouldBeTrue)
	test.That(t, truncated, test.ShouldResemble, before)
}

func TestRoundTripThroughJPEG(t *testing.T) {
	var encoded bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 640, 480))
	test.That(t, jpeg.Encode(&encoded, img, nil), test.ShouldBeNil)

	buf, err := InsertAPP1(encoded.Bytes(), 4*20)
	test.That(t, err, test.ShouldBeNil)
	n, err := Overwrite(640, 480, []uint16{10, 10, 50, 50}, buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 4)

	h, err := Parse(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Width, test.ShouldEqual, uint32(640))
	test.That(t, h.Height, test.ShouldEqual, uint32(480))
	test.That(t, string(buf[TIFFOffset:TIFFOffset+2]), test.ShouldEqual, "MM")
	test.That(t, h.ByteOrder.String(), test.ShouldEqual, endian.GetBigEndianEngine().String())
	test.That(t, h.Coords, test.ShouldResemble, []uint16{10, 10, 50, 50})

	decoded, err := jpeg.Decode(bytes.NewReader(buf))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
}

func TestInsertAPP1(t *testing.T) {
	_, err := InsertAPP1([]byte{0x00, 0x01}, 4)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = InsertAPP1(emptyJPEG, 40000)
	test.That(t, err, test.ShouldNotBeNil)

	buf := newSegment(t, 8)
	again, err := InsertAPP1(buf, 100)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, buf)
	capacity, err := Capacity(again)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, capacity, test.ShouldEqual, 8)
}

func TestParseLittleEndian(t *testing.T) {
	buf := newSegment(t, 16)
	le := binary.LittleEndian
	tiff := buf[TIFFOffset:]
	copy(tiff, "II")
	le.PutUint16(tiff[2:], 42)
	le.PutUint32(tiff[4:], 8)
	le.PutUint16(tiff[8:], 4)
	entry := func(off int, tag, typ uint16, count, value uint32) {
		le.PutUint16(tiff[off:], tag)
		le.PutUint16(tiff[off+2:], typ)
		le.PutUint32(tiff[off+4:], count)
		le.PutUint32(tiff[off+8:], value)
	}
	entry(10, 0x0112, 3, 1, 1) // orientation, ignored
	entry(22, TagImageWidth, 3, 1, 320)
	entry(34, TagImageLength, 4, 1, 240)
	entry(46, TagBoundingBoxes, 3, 4, 62)
	for i, c := range []uint16{1, 2, 300, 400} {
		le.PutUint16(tiff[62+2*i:], c)
	}

	h, err := Parse(buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.ByteOrder.String(), test.ShouldEqual, endian.GetLittleEndianEngine().String())
	test.That(t, h.Width, test.ShouldEqual, uint32(320))
	test.That(t, h.Height, test.ShouldEqual, uint32(240))
	test.That(t, h.Coords, test.ShouldResemble, []uint16{1, 2, 300, 400})
}

func TestParseMalformed(t *testing.T) {
	valid := func() []byte {
		buf := newSegment(t, 4)
		_, err := Overwrite(10, 10, []uint16{1, 1, 2, 2}, buf)
		test.That(t, err, test.ShouldBeNil)
		return buf
	}

	buf := valid()
	buf[TIFFOffset] = 'X'
	_, err := Parse(buf)
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)

	buf = valid()
	buf[TIFFOffset+3] = 43
	_, err = Parse(buf)
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)

	buf = valid()
	binary.BigEndian.PutUint32(buf[TIFFOffset+38:], 1000)
	_, err = Parse(buf)
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)

	buf = valid()
	binary.BigEndian.PutUint32(buf[TIFFOffset+4:], 5000)
	_, err = Parse(buf)
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)

	_, err = Parse(valid()[:30])
	test.That(t, errors.Is(err, ErrShortBuffer), test.ShouldBeTrue)

	_, err = Parse(emptyJPEG)
	test.That(t, errors.Is(err, ErrNotAPP1), test.ShouldBeTrue)
}

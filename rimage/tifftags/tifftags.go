// Package tifftags embeds blob bounding boxes into the TIFF header carried by the APP1 segment
// at the start of a JPEG, and reads them back.
//
// The layout written by Overwrite, relative to the TIFF base at byte 12 of the JPEG:
//
//	0   "MM" 00 2A 00000008        big endian, version 42, IFD at 8
//	8   0003                       three IFD entries
//	10  0100 0004 00000001 cols    image width
//	22  0101 0004 00000001 rows    image height
//	34  9696 0003 count 00000032   count bounding box coordinates at offset 50
//	46  00000000                   no next IFD
//	50  coordinates, big endian uint16, min-x min-y max-x max-y per box
//
// The rest of the segment is zero filled.
package tifftags

import (
	"github.com/arloliu/mebo/endian"
	"github.com/pkg/errors"
)

const (
	// TIFFOffset is the position of the TIFF base inside the JPEG: SOI, APP1 marker, segment
	// length and the "Exif\x00\x00" identifier come first.
	TIFFOffset = 12
	// DataOffset is where the coordinates start, relative to the TIFF base.
	DataOffset = 50

	// TagImageWidth is the TIFF ImageWidth tag.
	TagImageWidth = 0x0100
	// TagImageLength is the TIFF ImageLength tag.
	TagImageLength = 0x0101
	// TagBoundingBoxes is the private tag holding the coordinate list.
	TagBoundingBoxes = 0x9696

	typeShort = 3
	typeLong  = 4

	tiffVersion = 42
	entrySize   = 12
	coordSize   = 2
)

var (
	// ErrNotAPP1 means the buffer does not start with a JPEG SOI followed by an APP1 marker.
	ErrNotAPP1 = errors.New("buffer does not start with a JPEG APP1 segment")
	// ErrHeaderTooSmall means the APP1 segment cannot hold the fixed part of the TIFF header.
	ErrHeaderTooSmall = errors.New("APP1 segment too small for bounding box tags")
	// ErrShortBuffer means the buffer ends before the APP1 segment it declares.
	ErrShortBuffer = errors.New("buffer shorter than its APP1 segment")
	// ErrMalformed means the TIFF header could not be parsed.
	ErrMalformed = errors.New("malformed TIFF header")
)

var (
	be = endian.GetBigEndianEngine()

	soi    = []byte{0xFF, 0xD8}
	app1   = []byte{0xFF, 0xE1}
	exifID = []byte("Exif\x00\x00")
)

// segmentEnd returns the offset just past the APP1 segment of buf.
func segmentEnd(buf []byte) (int, error) {
	if len(buf) < 4 || buf[0] != soi[0] || buf[1] != soi[1] || buf[2] != app1[0] || buf[3] != app1[1] {
		return 0, ErrNotAPP1
	}
	if len(buf) < 6 {
		return 0, errors.Wrap(ErrHeaderTooSmall, "missing segment length")
	}
	return int(be.Uint16(buf[4:6])) + 4, nil
}

// Capacity returns how many coordinates Overwrite can store in buf.
func Capacity(buf []byte) (int, error) {
	_, capacity, err := writableSegment(buf)
	return capacity, err
}

// writableSegment returns the end of the APP1 segment and its coordinate capacity.
func writableSegment(buf []byte) (int, int, error) {
	end, err := segmentEnd(buf)
	if err != nil {
		return 0, 0, err
	}
	space := end - TIFFOffset - DataOffset
	if space < 0 {
		return 0, 0, errors.Wrapf(ErrHeaderTooSmall, "segment ends at byte %d", end)
	}
	if end > len(buf) {
		return 0, 0, errors.Wrapf(ErrShortBuffer, "segment ends at byte %d of %d", end, len(buf))
	}
	return end, space / coordSize, nil
}

// Overwrite replaces the TIFF header inside the APP1 segment of buf with the image size and as
// many whole bounding boxes from coords as fit. It returns the number of coordinates written, a
// multiple of four, or -1 and an error when buf has no usable APP1 segment. Nothing is written
// on failure and nothing is ever written past the end of the segment.
func Overwrite(cols, rows uint32, coords []uint16, buf []byte) (int, error) {
	end, capacity, err := writableSegment(buf)
	if err != nil {
		return -1, err
	}
	n := len(coords)
	if n > capacity {
		n = capacity
	}
	n -= n % 4

	tiff := buf[TIFFOffset:end]
	tiff[0], tiff[1] = 'M', 'M'
	be.PutUint16(tiff[2:], tiffVersion)
	be.PutUint32(tiff[4:], 8)
	be.PutUint16(tiff[8:], 3)
	putEntry(tiff[10:], TagImageWidth, typeLong, 1, cols)
	putEntry(tiff[22:], TagImageLength, typeLong, 1, rows)
	putEntry(tiff[34:], TagBoundingBoxes, typeShort, uint32(n), DataOffset)
	be.PutUint32(tiff[46:], 0)

	p := tiff[DataOffset:]
	for _, c := range coords[:n] {
		be.PutUint16(p, c)
		p = p[coordSize:]
	}
	for i := range p {
		p[i] = 0
	}
	return n, nil
}

func putEntry(b []byte, tag, typ uint16, count, value uint32) {
	be.PutUint16(b, tag)
	be.PutUint16(b[2:], typ)
	be.PutUint32(b[4:], count)
	be.PutUint32(b[8:], value)
}

// InsertAPP1 returns a copy of the JPEG in jpg with an empty APP1 Exif segment, large enough for
// maxCoords coordinates, placed right after the SOI marker. JPEGs that already start with an
// APP1 segment are returned unchanged.
func InsertAPP1(jpg []byte, maxCoords int) ([]byte, error) {
	if len(jpg) < 2 || jpg[0] != soi[0] || jpg[1] != soi[1] {
		return nil, errors.New("not a JPEG: missing SOI marker")
	}
	if len(jpg) >= 4 && jpg[2] == app1[0] && jpg[3] == app1[1] {
		return jpg, nil
	}
	if maxCoords < 0 {
		maxCoords = 0
	}
	// The length field counts itself, the Exif identifier and the TIFF data.
	length := 2 + len(exifID) + DataOffset + maxCoords*coordSize
	if length > 0xFFFF {
		return nil, errors.Errorf("%d coordinates do not fit in one APP1 segment", maxCoords)
	}

	out := make([]byte, 0, len(jpg)+2+length)
	out = append(out, soi...)
	out = append(out, app1...)
	out = be.AppendUint16(out, uint16(length))
	out = append(out, exifID...)
	out = append(out, make([]byte, DataOffset+maxCoords*coordSize)...)
	out = append(out, jpg[2:]...)
	return out, nil
}

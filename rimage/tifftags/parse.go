package tifftags

import (
	"github.com/arloliu/mebo/endian"
	"github.com/pkg/errors"
)

// Header is the content of a TIFF header read back from an APP1 segment.
type Header struct {
	Width     uint32
	Height    uint32
	ByteOrder endian.EndianEngine
	// Coords holds the bounding box coordinates, four per box.
	Coords []uint16
}

// Parse reads the TIFF header from the APP1 segment at the start of buf. Either byte order is
// accepted. Tags other than width, height and the bounding boxes are skipped.
func Parse(buf []byte) (Header, error) {
	end, err := segmentEnd(buf)
	if err != nil {
		return Header{}, err
	}
	if end > len(buf) {
		return Header{}, errors.Wrapf(ErrShortBuffer, "segment ends at byte %d of %d", end, len(buf))
	}
	if end < TIFFOffset+8 {
		return Header{}, errors.Wrapf(ErrHeaderTooSmall, "segment ends at byte %d", end)
	}
	tiff := buf[TIFFOffset:end]

	var h Header
	switch string(tiff[:2]) {
	case "MM":
		h.ByteOrder = endian.GetBigEndianEngine()
	case "II":
		h.ByteOrder = endian.GetLittleEndianEngine()
	default:
		return Header{}, errors.Wrapf(ErrMalformed, "unknown byte order %q", tiff[:2])
	}
	bo := h.ByteOrder
	if v := bo.Uint16(tiff[2:]); v != tiffVersion {
		return Header{}, errors.Wrapf(ErrMalformed, "version %d", v)
	}

	ifd := int(bo.Uint32(tiff[4:]))
	if ifd+2 > len(tiff) {
		return Header{}, errors.Wrapf(ErrMalformed, "IFD offset %d out of range", ifd)
	}
	count := int(bo.Uint16(tiff[ifd:]))
	entries := tiff[ifd+2:]
	if count*entrySize > len(entries) {
		return Header{}, errors.Wrapf(ErrMalformed, "%d IFD entries do not fit", count)
	}

	for i := 0; i < count; i++ {
		e := entries[i*entrySize : (i+1)*entrySize]
		tag, typ, n := bo.Uint16(e), bo.Uint16(e[2:]), bo.Uint32(e[4:])
		switch tag {
		case TagImageWidth:
			h.Width = scalar(bo, typ, e[8:])
		case TagImageLength:
			h.Height = scalar(bo, typ, e[8:])
		case TagBoundingBoxes:
			if typ != typeShort {
				return Header{}, errors.Wrapf(ErrMalformed, "bounding box tag has type %d", typ)
			}
			coords, err := shorts(bo, tiff, e[8:], int(n))
			if err != nil {
				return Header{}, err
			}
			h.Coords = coords
		}
	}
	return h, nil
}

// scalar decodes a single SHORT or LONG value stored inline in an IFD entry.
func scalar(bo endian.EndianEngine, typ uint16, value []byte) uint32 {
	if typ == typeShort {
		return uint32(bo.Uint16(value))
	}
	return bo.Uint32(value)
}

// shorts decodes n SHORT values. Up to two fit inline in the value field, more live at the
// offset it holds.
func shorts(bo endian.EndianEngine, tiff, value []byte, n int) ([]uint16, error) {
	data := value[:4]
	if n*coordSize > 4 {
		off := int(bo.Uint32(value))
		if off < 0 || off+n*coordSize > len(tiff) {
			return nil, errors.Wrapf(ErrMalformed, "%d coordinates at offset %d overrun the segment", n, off)
		}
		data = tiff[off:]
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = bo.Uint16(data[i*coordSize:])
	}
	return out, nil
}

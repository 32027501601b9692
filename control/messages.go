package control

import (
	"github.com/arloliu/mebo/endian"
	"github.com/pkg/errors"

	"go.viam.com/blobcam/vision/blob"
)

// Message tags. Each message starts with its tag byte.
const (
	TagSaturation           = 1
	TagSharpness            = 2
	TagContrast             = 3
	TagBrightness           = 4
	TagISO                  = 5
	TagMeteringMode         = 6
	TagVideoStabilisation   = 7
	TagExposureCompensation = 8
	TagExposureMode         = 9
	TagAWBMode              = 10
	TagAWBGains             = 11
	TagImageFX              = 12
	TagColourFX             = 13
	TagRotation             = 14
	TagFlips                = 15
	TagROI                  = 16
	TagShutterSpeed         = 17
	TagDRC                  = 18
	TagStatsPass            = 19
	TagTestImageEnable      = 22
	TagDetectYUV            = 23
)

// MaxMessageSize is the largest message; one read of up to this many bytes is one message.
const MaxMessageSize = 64

const (
	intMessageSize       = 8
	detectYUVMessageSize = 7
)

var (
	// ErrShortMessage is returned for a message too short for its tag.
	ErrShortMessage = errors.New("message too short")
	// ErrUnsupported is returned for camera tuning messages, which this camera cannot apply.
	ErrUnsupported = errors.New("camera tuning is not supported")
	// ErrUnknownTag is returned for tags outside the protocol.
	ErrUnknownTag = errors.New("unknown message tag")
)

var be = endian.GetBigEndianEngine()

// A Tuner applies the settings carried by control messages.
type Tuner interface {
	SetThresholds(t blob.Thresholds)
	SetTestImage(enable bool)
}

// HandleMessage decodes one message and applies it to tuner.
func HandleMessage(msg []byte, tuner Tuner) error {
	if len(msg) == 0 {
		return errors.Wrap(ErrShortMessage, "empty message")
	}
	tag := msg[0]
	switch {
	case tag == TagDetectYUV:
		if len(msg) < detectYUVMessageSize {
			return errors.Wrapf(ErrShortMessage, "tag %d needs %d bytes, got %d", tag, detectYUVMessageSize, len(msg))
		}
		tuner.SetThresholds(blob.ThresholdsFromYUV(
			[3]uint8{msg[1], msg[3], msg[5]},
			[3]uint8{msg[2], msg[4], msg[6]}))
	case tag == TagTestImageEnable:
		if len(msg) < intMessageSize {
			return errors.Wrapf(ErrShortMessage, "tag %d needs %d bytes, got %d", tag, intMessageSize, len(msg))
		}
		tuner.SetTestImage(clamp(int32(be.Uint32(msg[4:])), 0, 1) == 1)
	case tag >= TagSaturation && tag <= TagStatsPass:
		return errors.Wrapf(ErrUnsupported, "tag %d", tag)
	default:
		return errors.Wrapf(ErrUnknownTag, "tag %d", tag)
	}
	return nil
}

func clamp(v, lo, hi int32) int32 {
	return min(max(v, lo), hi)
}

// DetectYUVMessage encodes a detection window retune.
func DetectYUVMessage(lo, hi [3]uint8) []byte {
	return []byte{TagDetectYUV, lo[0], hi[0], lo[1], hi[1], lo[2], hi[2]}
}

// TestImageMessage encodes the test image switch.
func TestImageMessage(enable bool) []byte {
	msg := make([]byte, 4, intMessageSize)
	msg[0] = TagTestImageEnable
	var v uint32
	if enable {
		v = 1
	}
	return be.AppendUint32(msg, v)
}

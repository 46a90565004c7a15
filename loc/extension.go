package loc

import "github.com/tetsuo/moq/bmff"

// Known header extension IDs (draft-ietf-moq-loc). Parity is semantic:
// even IDs carry a single varint value, odd IDs carry a length-prefixed
// byte string. This table is the one shared, immutable resource the
// codec touches — unlike a request-scoped registry, there is no mutation
// path, so no guarding mutex is needed.
const (
	extCaptureTimestamp  uint64 = 2
	extVideoFrameMarking uint64 = 4
	extAudioLevel        uint64 = 6
	extVideoConfig       uint64 = 13
)

// HeaderExtension is any decoded LOC header extension, keyed by its wire
// ID.
type HeaderExtension interface {
	ID() uint64
}

// CaptureTimestamp (ID 2, even) carries wall-clock microseconds since the
// Unix epoch.
type CaptureTimestamp struct {
	Microseconds uint64
}

func (CaptureTimestamp) ID() uint64 { return extCaptureTimestamp }

// VideoFrameMarking (ID 4, even) packs RFC-9626-style frame marking bits
// into the low bits of a varint value.
type VideoFrameMarking struct {
	Independent     bool
	Discardable     bool
	BaseLayerSync   bool
	TemporalLayerID uint8 // 0-7
	SpatialLayerID  uint8 // 0-3
}

func (VideoFrameMarking) ID() uint64 { return extVideoFrameMarking }

func (v VideoFrameMarking) pack() (uint64, error) {
	if v.TemporalLayerID > 7 {
		return 0, &bmff.Error{Kind: bmff.OutOfRange, Msg: "VideoFrameMarking.TemporalLayerID out of 0-7 range"}
	}
	if v.SpatialLayerID > 3 {
		return 0, &bmff.Error{Kind: bmff.OutOfRange, Msg: "VideoFrameMarking.SpatialLayerID out of 0-3 range"}
	}
	var bits uint64
	if v.Independent {
		bits |= 1 << 0
	}
	if v.Discardable {
		bits |= 1 << 1
	}
	if v.BaseLayerSync {
		bits |= 1 << 2
	}
	bits |= uint64(v.TemporalLayerID) << 3
	bits |= uint64(v.SpatialLayerID) << 6
	return bits, nil
}

func unpackVideoFrameMarking(bits uint64) VideoFrameMarking {
	return VideoFrameMarking{
		Independent:     bits&(1<<0) != 0,
		Discardable:     bits&(1<<1) != 0,
		BaseLayerSync:   bits&(1<<2) != 0,
		TemporalLayerID: uint8(bits>>3) & 0x7,
		SpatialLayerID:  uint8(bits>>6) & 0x3,
	}
}

// AudioLevel (ID 6, even) packs a voice-activity flag and a 0-127 audio
// level into the low bits of a varint value. 0 is loudest.
type AudioLevel struct {
	VoiceActivity bool
	Level         uint8 // 0-127
}

func (AudioLevel) ID() uint64 { return extAudioLevel }

func (a AudioLevel) pack() (uint64, error) {
	if a.Level > 127 {
		return 0, &bmff.Error{Kind: bmff.OutOfRange, Msg: "AudioLevel.Level out of 0-127 range"}
	}
	bits := uint64(a.Level) << 1
	if a.VoiceActivity {
		bits |= 1
	}
	return bits, nil
}

func unpackAudioLevel(bits uint64) AudioLevel {
	return AudioLevel{
		VoiceActivity: bits&1 != 0,
		Level:         uint8(bits>>1) & 0x7F,
	}
}

// VideoConfig (ID 13, odd) carries opaque codec extradata (e.g. an avcC
// body) as a length-prefixed byte string.
type VideoConfig struct {
	Bytes []byte
}

func (VideoConfig) ID() uint64 { return extVideoConfig }

// Unknown is the fallback variant for an unrecognised extension ID, kept
// so a decoded object can round-trip even when it carries extensions this
// library doesn't know about.
type Unknown struct {
	IDValue  uint64
	Odd      bool
	Varint   uint64 // meaningful when !Odd
	RawBytes []byte // meaningful when Odd
}

func (u Unknown) ID() uint64 { return u.IDValue }

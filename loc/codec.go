package loc

import (
	"github.com/tetsuo/moq/bmff"
	"github.com/tetsuo/moq/varint"
)

// EncodeHeaders serializes ext as a flat concatenation of
// [varint id][varint length (odd id only)][value] tuples, in the given
// order. There is no outer framing: the block's end is simply the end of
// the returned slice.
func EncodeHeaders(ext []HeaderExtension) ([]byte, error) {
	var buf []byte
	for _, e := range ext {
		id := e.ID()
		buf = varint.Append(buf, id)
		if id%2 == 0 {
			val, err := encodeEvenValue(e)
			if err != nil {
				return nil, err
			}
			buf = varint.Append(buf, val)
		} else {
			payload := encodeOddPayload(e)
			buf = varint.Append(buf, uint64(len(payload)))
			buf = append(buf, payload...)
		}
	}
	return buf, nil
}

func encodeEvenValue(e HeaderExtension) (uint64, error) {
	switch v := e.(type) {
	case CaptureTimestamp:
		return v.Microseconds, nil
	case VideoFrameMarking:
		return v.pack()
	case AudioLevel:
		return v.pack()
	case Unknown:
		return v.Varint, nil
	default:
		return 0, nil
	}
}

func encodeOddPayload(e HeaderExtension) []byte {
	switch v := e.(type) {
	case VideoConfig:
		return v.Bytes
	case Unknown:
		return v.RawBytes
	default:
		return nil
	}
}

// DecodeHeaders parses a header-extension block. Unknown even IDs are
// assumed (per the resolved open question) to carry exactly one trailing
// varint value; unknown odd IDs carry a length-prefixed byte string like
// any other odd extension, so no assumption is needed there. Unknown
// extensions are preserved as Unknown variants and also reported as
// warnings so callers can observe them.
func DecodeHeaders(buf []byte) ([]HeaderExtension, []bmff.Warning, error) {
	var exts []HeaderExtension
	var warnings []bmff.Warning
	off := 0

	for off < len(buf) {
		id, next, err := varint.ParseAt(buf, off)
		if err != nil {
			return nil, nil, err
		}
		off = next

		if id%2 == 0 {
			val, next, err := varint.ParseAt(buf, off)
			if err != nil {
				return nil, nil, err
			}
			off = next
			switch id {
			case extCaptureTimestamp:
				exts = append(exts, CaptureTimestamp{Microseconds: val})
			case extVideoFrameMarking:
				exts = append(exts, unpackVideoFrameMarking(val))
			case extAudioLevel:
				exts = append(exts, unpackAudioLevel(val))
			default:
				exts = append(exts, Unknown{IDValue: id, Odd: false, Varint: val})
				warnings = append(warnings, bmff.Warning{Msg: "unknown even LOC extension ID, value preserved as a single varint"})
			}
			continue
		}

		length, next, err := varint.ParseAt(buf, off)
		if err != nil {
			return nil, nil, err
		}
		off = next
		if uint64(len(buf)-off) < length {
			return nil, nil, &bmff.Error{Kind: bmff.Truncated, Offset: off, Msg: "LOC extension byte string truncated"}
		}
		raw := buf[off : off+int(length)]
		off += int(length)

		switch id {
		case extVideoConfig:
			exts = append(exts, VideoConfig{Bytes: raw})
		default:
			exts = append(exts, Unknown{IDValue: id, Odd: true, RawBytes: raw})
			warnings = append(warnings, bmff.Warning{Msg: "unknown odd LOC extension ID, raw bytes preserved"})
		}
	}
	return exts, warnings, nil
}

// EncodeLocSplit produces the LOC object's header-extension block and
// payload as two independently transportable byte slices, matching how
// MoQ delivers them (extensions in the object header, payload as the
// object body).
func EncodeLocSplit(o LocObject) (headers, payload []byte, err error) {
	headers, err = EncodeHeaders(o.Extensions)
	if err != nil {
		return nil, nil, err
	}
	return headers, o.Payload, nil
}

// EncodeLocConcat produces a single buffer holding the header-extension
// block immediately followed by the payload, for transports that don't
// separate the two channels.
func EncodeLocConcat(o LocObject) ([]byte, error) {
	h, p, err := EncodeLocSplit(o)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(h)+len(p))
	out = append(out, h...)
	out = append(out, p...)
	return out, nil
}

// DecodeLocSplit decodes a LocObject from its already-separated header
// and payload channels.
func DecodeLocSplit(kind MediaKind, headers, payload []byte) (LocObject, error) {
	exts, warnings, err := DecodeHeaders(headers)
	if err != nil {
		return LocObject{}, err
	}
	return LocObject{Kind: kind, Payload: payload, Extensions: exts, Warnings: warnings}, nil
}

// DecodeLocConcat decodes a LocObject from a single buffer holding the
// header-extension block followed by the payload. headerLen is the
// number of leading bytes that make up the extension block (callers
// track this out of band, e.g. from a MoQ object header's own length
// field — the extension block carries no internal framing).
func DecodeLocConcat(kind MediaKind, buf []byte, headerLen int) (LocObject, error) {
	if headerLen > len(buf) {
		return LocObject{}, &bmff.Error{Kind: bmff.Truncated, Msg: "LOC concatenated buffer shorter than declared header length"}
	}
	return DecodeLocSplit(kind, buf[:headerLen], buf[headerLen:])
}

package bmff

// VisualSampleEntry is a decoded avc1/avc3/hev1/hvc1/vp09/av01 entry. The
// codec-specific configuration box that follows the fixed fields (avcC,
// hvcC, vpcC, av1C, ...) is kept opaque, per the library's scope: codec
// configuration payload is a black box relayed verbatim.
type VisualSampleEntry struct {
	Type          BoxType
	Width, Height uint16
	CodecConfig   []byte // everything after the 78-byte fixed visual fields
}

// ReadVisualSampleEntry decodes data (a stsd child's RawBox, see
// ReadSampleEntry) as a VisualSampleEntry.
func ReadVisualSampleEntry(data []byte) (VisualSampleEntry, error) {
	if len(data) < 8+78 {
		return VisualSampleEntry{}, truncatedErr(0, "visual sample entry shorter than fixed fields")
	}
	var typ BoxType
	copy(typ[:], data[4:8])
	body := data[8:]
	return VisualSampleEntry{
		Type:        typ,
		Width:       be.Uint16(body[24:26]),
		Height:      be.Uint16(body[26:28]),
		CodecConfig: body[78:],
	}, nil
}

// AudioSampleEntry is a decoded mp4a/opus/ac-3/ec-3 entry.
type AudioSampleEntry struct {
	Type           BoxType
	ChannelCount   uint16
	SampleSizeBits uint16
	SampleRate     uint32 // integer Hz, extracted from the 16.16 field
	CodecConfig    []byte
}

// ReadAudioSampleEntry decodes data (a stsd child's RawBox) as an
// AudioSampleEntry.
func ReadAudioSampleEntry(data []byte) (AudioSampleEntry, error) {
	if len(data) < 8+28 {
		return AudioSampleEntry{}, truncatedErr(0, "audio sample entry shorter than fixed fields")
	}
	var typ BoxType
	copy(typ[:], data[4:8])
	body := data[8:]
	return AudioSampleEntry{
		Type:           typ,
		ChannelCount:   be.Uint16(body[16:18]),
		SampleSizeBits: be.Uint16(body[18:20]),
		SampleRate:     be.Uint32(body[24:28]) >> 16,
		CodecConfig:    body[28:],
	}, nil
}

// GenericSampleEntry is a decoded sample entry whose FourCC isn't a known
// visual or audio family member. Everything past the 8-byte SampleEntry
// base fields is kept opaque.
type GenericSampleEntry struct {
	Type        BoxType
	CodecConfig []byte
}

// ReadGenericSampleEntry decodes data (a stsd child's RawBox) as a
// GenericSampleEntry.
func ReadGenericSampleEntry(data []byte) (GenericSampleEntry, error) {
	if len(data) < 8+8 {
		return GenericSampleEntry{}, truncatedErr(0, "generic sample entry shorter than base fields")
	}
	var typ BoxType
	copy(typ[:], data[4:8])
	return GenericSampleEntry{Type: typ, CodecConfig: data[16:]}, nil
}

// ReadStsdEntry dispatches a decoded stsd child (identified by reading its
// FourCC out of raw) to the matching sample entry decoder, by family.
func ReadStsdEntry(raw []byte) (any, error) {
	if len(raw) < 8 {
		return nil, truncatedErr(0, "stsd entry shorter than a box header")
	}
	var typ BoxType
	copy(typ[:], raw[4:8])
	switch {
	case IsVisualSampleEntry(typ):
		return ReadVisualSampleEntry(raw)
	case IsAudioSampleEntry(typ):
		return ReadAudioSampleEntry(raw)
	default:
		return ReadGenericSampleEntry(raw)
	}
}

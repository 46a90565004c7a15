package bmff

// FtypBox is the decoded content of an ftyp or styp box.
type FtypBox struct {
	MajorBrand       BoxType
	MinorVersion     uint32
	CompatibleBrands []BoxType
}

// ReadFtyp decodes the current ftyp/styp box's brand list.
func (r *Reader) ReadFtyp() (FtypBox, error) {
	d := r.rawBody() // ftyp/styp are not full boxes
	if len(d) < 8 {
		return FtypBox{}, truncatedErr(r.curStart, "ftyp/styp shorter than major_brand+minor_version")
	}
	var out FtypBox
	copy(out.MajorBrand[:], d[0:4])
	out.MinorVersion = be.Uint32(d[4:8])
	rest := d[8:]
	if len(rest)%4 != 0 {
		return FtypBox{}, malformedErr(r.curStart, "ftyp/styp compatible_brands not a multiple of 4 bytes")
	}
	for i := 0; i+4 <= len(rest); i += 4 {
		var b BoxType
		copy(b[:], rest[i:i+4])
		out.CompatibleBrands = append(out.CompatibleBrands, b)
	}
	return out, nil
}

// MvhdBox is the subset of mvhd's fields this library cares about.
type MvhdBox struct {
	Timescale   uint32
	Duration    uint64
	NextTrackID uint32
}

// ReadMvhd decodes mvhd, accepting both version 0 (32-bit) and version 1
// (64-bit) time fields.
func (r *Reader) ReadMvhd() (MvhdBox, error) {
	d := r.Data()
	if r.Version() == 1 {
		if len(d) < 28 {
			return MvhdBox{}, truncatedErr(r.curStart, "mvhd v1 truncated")
		}
		ts := be.Uint32(d[16:20])
		dur := be.Uint64(d[20:28])
		if len(d) < 108 {
			return MvhdBox{}, truncatedErr(r.curStart, "mvhd v1 truncated before next_track_ID")
		}
		return MvhdBox{Timescale: ts, Duration: dur, NextTrackID: be.Uint32(d[104:108])}, nil
	}
	if len(d) < 16 {
		return MvhdBox{}, truncatedErr(r.curStart, "mvhd v0 truncated")
	}
	ts := be.Uint32(d[8:12])
	dur := zeroExtend32(be.Uint32(d[12:16]))
	if len(d) < 96 {
		return MvhdBox{}, truncatedErr(r.curStart, "mvhd v0 truncated before next_track_ID")
	}
	return MvhdBox{Timescale: ts, Duration: dur, NextTrackID: be.Uint32(d[92:96])}, nil
}

// TkhdBox is the subset of tkhd's fields this library cares about.
type TkhdBox struct {
	Flags         uint32
	TrackID       uint32
	Duration      uint64
	Width, Height Fixed1616
}

// ReadTkhd decodes tkhd, accepting both version 0 and version 1.
func (r *Reader) ReadTkhd() (TkhdBox, error) {
	d := r.Data()
	flags := r.Flags()
	if r.Version() == 1 {
		if len(d) < 32 {
			return TkhdBox{}, truncatedErr(r.curStart, "tkhd v1 truncated")
		}
		trackID := be.Uint32(d[16:20])
		dur := be.Uint64(d[24:32])
		if len(d) < 92 {
			return TkhdBox{}, truncatedErr(r.curStart, "tkhd v1 truncated before width/height")
		}
		return TkhdBox{Flags: flags, TrackID: trackID, Duration: dur,
			Width:  Fixed1616(be.Uint32(d[84:88])),
			Height: Fixed1616(be.Uint32(d[88:92])),
		}, nil
	}
	if len(d) < 20 {
		return TkhdBox{}, truncatedErr(r.curStart, "tkhd v0 truncated")
	}
	trackID := be.Uint32(d[8:12])
	dur := zeroExtend32(be.Uint32(d[16:20]))
	if len(d) < 80 {
		return TkhdBox{}, truncatedErr(r.curStart, "tkhd v0 truncated before width/height")
	}
	return TkhdBox{Flags: flags, TrackID: trackID, Duration: dur,
		Width:  Fixed1616(be.Uint32(d[72:76])),
		Height: Fixed1616(be.Uint32(d[76:80])),
	}, nil
}

// MdhdBox is the subset of mdhd's fields this library cares about.
type MdhdBox struct {
	Timescale uint32
	Duration  uint64
	Language  [3]byte
}

// ReadMdhd decodes mdhd, accepting both version 0 and version 1.
func (r *Reader) ReadMdhd() (MdhdBox, error) {
	d := r.Data()
	if r.Version() == 1 {
		if len(d) < 28 {
			return MdhdBox{}, truncatedErr(r.curStart, "mdhd v1 truncated")
		}
		ts := be.Uint32(d[16:20])
		dur := be.Uint64(d[20:28])
		if len(d) < 30 {
			return MdhdBox{}, truncatedErr(r.curStart, "mdhd v1 truncated before language")
		}
		return MdhdBox{Timescale: ts, Duration: dur, Language: unpackLanguage(be.Uint16(d[28:30]))}, nil
	}
	if len(d) < 16 {
		return MdhdBox{}, truncatedErr(r.curStart, "mdhd v0 truncated")
	}
	ts := be.Uint32(d[8:12])
	dur := zeroExtend32(be.Uint32(d[12:16]))
	if len(d) < 18 {
		return MdhdBox{}, truncatedErr(r.curStart, "mdhd v0 truncated before language")
	}
	return MdhdBox{Timescale: ts, Duration: dur, Language: unpackLanguage(be.Uint16(d[16:18]))}, nil
}

func unpackLanguage(v uint16) [3]byte {
	var lang [3]byte
	lang[2] = byte(v&0x1F) + 0x60
	lang[1] = byte((v>>5)&0x1F) + 0x60
	lang[0] = byte((v>>10)&0x1F) + 0x60
	return lang
}

// HdlrBox is the subset of hdlr's fields this library cares about.
type HdlrBox struct {
	HandlerType BoxType
	Name        string
}

// ReadHdlr decodes hdlr's handler_type and NUL-terminated name.
func (r *Reader) ReadHdlr() (HdlrBox, error) {
	d := r.Data()
	if len(d) < 20 {
		return HdlrBox{}, truncatedErr(r.curStart, "hdlr truncated before handler_type")
	}
	var out HdlrBox
	copy(out.HandlerType[:], d[4:8])
	name := d[20:]
	if i := indexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	out.Name = string(name)
	return out, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// ReadMdat returns mdat's payload bytes, aliasing the source buffer.
func (r *Reader) ReadMdat() []byte { return r.rawBody() }

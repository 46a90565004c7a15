package bmff

// SampleFlags is the 32-bit per-sample flag word defined by ISO/IEC
// 14496-12 §8.8.3.1, used in tfhd's default_sample_flags and trun's
// first_sample_flags / per-sample flags.
//
// Layout (MSB to LSB): reserved(4) | is_leading(2) | sample_depends_on(2)
// | sample_is_depended_on(2) | sample_has_redundancy(2)
// | sample_padding_value(3) | sample_is_non_sync_sample(1)
// | sample_degradation_priority(16).
type SampleFlags uint32

// NewSampleFlags packs the documented sub-fields into a SampleFlags word.
func NewSampleFlags(isLeading, dependsOn, isDependedOn, hasRedundancy uint8, paddingValue uint8, isNonSync bool, degradationPriority uint16) SampleFlags {
	var v uint32
	v |= uint32(isLeading&0x3) << 26
	v |= uint32(dependsOn&0x3) << 24
	v |= uint32(isDependedOn&0x3) << 22
	v |= uint32(hasRedundancy&0x3) << 20
	v |= uint32(paddingValue&0x7) << 17
	if isNonSync {
		v |= 1 << 16
	}
	v |= uint32(degradationPriority)
	return SampleFlags(v)
}

func (f SampleFlags) isLeading() uint8          { return uint8(f>>26) & 0x3 }
func (f SampleFlags) dependsOn() uint8          { return uint8(f>>24) & 0x3 }
func (f SampleFlags) isDependedOn() uint8       { return uint8(f>>22) & 0x3 }
func (f SampleFlags) hasRedundancy() uint8      { return uint8(f>>20) & 0x3 }

// IsNonSync reports the raw sample_is_non_sync_sample bit.
func (f SampleFlags) IsNonSync() bool { return f&(1<<16) != 0 }

// IsSync reports whether the sample is usable as a random access point,
// per spec: is_sync = !is_non_sync.
func (f SampleFlags) IsSync() bool {
	return !f.IsNonSync()
}

// IsIndependent reports whether the sample does not depend on other
// samples (sample_depends_on == 2), regardless of its sync status.
func (f SampleFlags) IsIndependent() bool { return f.dependsOn() == 2 }

// IsDependedUpon reports whether other samples are known to depend on
// this one (sample_is_depended_on == 1); "unknown" (0) and "not depended
// on" (2) both report false.
func (f SampleFlags) IsDependedUpon() bool { return f.isDependedOn() == 1 }

// DegradationPriority returns the sample's 16-bit degradation priority.
func (f SampleFlags) DegradationPriority() uint16 { return uint16(f) }

// ReadTfhd decodes tfhd's track_id and flag-gated optional fields from the
// current box. r must be positioned on a tfhd box.
func (r *Reader) ReadTfhd() (trackID uint32, fields TfhdFields, err error) {
	d := r.Data()
	if len(d) < 4 {
		return 0, TfhdFields{}, truncatedErr(r.curStart, "tfhd shorter than track_id field")
	}
	trackID = be.Uint32(d[0:4])
	flags := r.Flags()
	off := 4

	need := func(n int) error {
		if len(d)-off < n {
			return truncatedErr(r.curStart, "tfhd truncated before an optional field selected by flags")
		}
		return nil
	}

	if flags&TfhdBaseDataOffsetPresent != 0 {
		if err = need(8); err != nil {
			return 0, TfhdFields{}, err
		}
		fields.BaseDataOffset = be.Uint64(d[off : off+8])
		off += 8
	}
	if flags&TfhdSampleDescriptionIndexPresent != 0 {
		if err = need(4); err != nil {
			return 0, TfhdFields{}, err
		}
		fields.SampleDescriptionIndex = be.Uint32(d[off : off+4])
		off += 4
	}
	if flags&TfhdDefaultSampleDurationPresent != 0 {
		if err = need(4); err != nil {
			return 0, TfhdFields{}, err
		}
		fields.DefaultSampleDuration = be.Uint32(d[off : off+4])
		off += 4
	}
	if flags&TfhdDefaultSampleSizePresent != 0 {
		if err = need(4); err != nil {
			return 0, TfhdFields{}, err
		}
		fields.DefaultSampleSize = be.Uint32(d[off : off+4])
		off += 4
	}
	if flags&TfhdDefaultSampleFlagsPresent != 0 {
		if err = need(4); err != nil {
			return 0, TfhdFields{}, err
		}
		fields.DefaultSampleFlags = SampleFlags(be.Uint32(d[off : off+4]))
		off += 4
	}
	return trackID, fields, nil
}

// ReadTfdt decodes tfdt's base_media_decode_time, accepting both version 0
// (32-bit) and version 1 (64-bit) on read; the encoder always emits
// version 1.
func (r *Reader) ReadTfdt() (uint64, error) {
	d := r.Data()
	if r.Version() == 0 {
		if len(d) < 4 {
			return 0, truncatedErr(r.curStart, "tfdt v0 shorter than 4 bytes")
		}
		return zeroExtend32(be.Uint32(d[0:4])), nil
	}
	if len(d) < 8 {
		return 0, truncatedErr(r.curStart, "tfdt v1 shorter than 8 bytes")
	}
	return be.Uint64(d[0:8]), nil
}

// ReadMfhd decodes mfhd's sequence_number.
func (r *Reader) ReadMfhd() (uint32, error) {
	d := r.Data()
	if len(d) < 4 {
		return 0, truncatedErr(r.curStart, "mfhd shorter than 4 bytes")
	}
	return be.Uint32(d[0:4]), nil
}

// TrunIter iterates a trun box's per-sample entries without allocating,
// interpreting only the fields flags selects.
type TrunIter struct {
	data    []byte
	flags   uint32
	version uint8
	off     int
	count   int
	i       int
}

// NewTrunIter prepares an iterator over a trun box's Data().
func NewTrunIter(data []byte, flags uint32, version uint8) (*TrunIter, error) {
	if len(data) < 4 {
		return nil, truncatedErr(0, "trun shorter than sample_count field")
	}
	count := be.Uint32(data[0:4])
	off := 4
	if flags&TrunDataOffsetPresent != 0 {
		off += 4
	}
	if flags&TrunFirstSampleFlagsPresent != 0 {
		off += 4
	}
	return &TrunIter{data: data, flags: flags, version: version, off: off, count: int(count)}, nil
}

// DataOffset returns trun's optional data_offset field and whether it was
// present.
func (it *TrunIter) DataOffset() (int32, bool) {
	if it.flags&TrunDataOffsetPresent == 0 || len(it.data) < 8 {
		return 0, false
	}
	return int32(be.Uint32(it.data[4:8])), true
}

// FirstSampleFlags returns trun's optional first_sample_flags field and
// whether it was present.
func (it *TrunIter) FirstSampleFlags() (SampleFlags, bool) {
	if it.flags&TrunFirstSampleFlagsPresent == 0 {
		return 0, false
	}
	base := 4
	if it.flags&TrunDataOffsetPresent != 0 {
		base += 4
	}
	if len(it.data) < base+4 {
		return 0, false
	}
	return SampleFlags(be.Uint32(it.data[base : base+4])), true
}

func (it *TrunIter) sampleEntryLen() int {
	n := 0
	if it.flags&TrunSampleDurationPresent != 0 {
		n += 4
	}
	if it.flags&TrunSampleSizePresent != 0 {
		n += 4
	}
	if it.flags&TrunSampleFlagsPresent != 0 {
		n += 4
	}
	if it.flags&TrunSampleCompositionTimeOffsetPresent != 0 {
		n += 4
	}
	return n
}

// Next decodes the next sample entry, reporting false once count entries
// have been consumed or the buffer runs out.
func (it *TrunIter) Next() (TrunSample, bool) {
	if it.i >= it.count {
		return TrunSample{}, false
	}
	n := it.sampleEntryLen()
	if len(it.data)-it.off < n {
		return TrunSample{}, false
	}
	var s TrunSample
	off := it.off
	if it.flags&TrunSampleDurationPresent != 0 {
		s.Duration = be.Uint32(it.data[off : off+4])
		off += 4
	}
	if it.flags&TrunSampleSizePresent != 0 {
		s.Size = be.Uint32(it.data[off : off+4])
		off += 4
	}
	if it.flags&TrunSampleFlagsPresent != 0 {
		s.Flags = SampleFlags(be.Uint32(it.data[off : off+4]))
		off += 4
	}
	if it.flags&TrunSampleCompositionTimeOffsetPresent != 0 {
		raw := be.Uint32(it.data[off : off+4])
		if it.version == 0 {
			s.CompositionTimeOffset = int32(raw) // unsigned interpretation kept in a signed field
		} else {
			s.CompositionTimeOffset = int32(raw) // two's complement, version 1
		}
		off += 4
	}
	it.off = off
	it.i++
	return s, true
}

// Count returns trun's declared sample_count.
func (it *TrunIter) Count() int { return it.count }

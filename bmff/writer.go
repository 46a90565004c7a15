package bmff

// Writer builds an ISO BMFF byte stream by appending to an internal
// buffer. StartBox/EndBox bracket a container; the leaf Write* methods
// each emit one complete box. Writer never needs to know a box's final
// size up front — EndBox patches the 4-byte size placeholder once the
// container's children have all been written.
type Writer struct {
	buf   []byte
	stack []int // start offsets of open boxes, recorded by StartBox
}

// NewWriter returns a Writer that appends into buf's backing array,
// starting from an empty buffer (buf's existing length is discarded; only
// its capacity is reused).
func NewWriter(buf []byte) Writer {
	return Writer{buf: buf[:0]}
}

// Bytes returns the accumulated output. It is only valid once every
// StartBox has a matching EndBox.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// StartBox opens a container box of type typ, reserving its header for
// later patching by EndBox.
func (w *Writer) StartBox(typ BoxType) {
	w.stack = append(w.stack, len(w.buf))
	var hdr [8]byte
	copy(hdr[4:8], typ[:])
	w.buf = append(w.buf, hdr[:]...)
}

// EndBox closes the most recently opened box, writing its final size into
// the header reserved by StartBox.
func (w *Writer) EndBox() {
	n := len(w.stack)
	if n == 0 {
		panic("bmff: EndBox without matching StartBox")
	}
	start := w.stack[n-1]
	w.stack = w.stack[:n-1]
	size := len(w.buf) - start
	be.PutUint32(w.buf[start:start+4], uint32(size))
}

func (w *Writer) writeFullBoxHeader(typ BoxType, version uint8, flags uint32) int {
	start := len(w.buf)
	var hdr [12]byte
	copy(hdr[4:8], typ[:])
	hdr[8] = version
	hdr[9] = byte(flags >> 16)
	hdr[10] = byte(flags >> 8)
	hdr[11] = byte(flags)
	w.buf = append(w.buf, hdr[:]...)
	return start
}

func (w *Writer) patchSize(start int) {
	size := len(w.buf) - start
	be.PutUint32(w.buf[start:start+4], uint32(size))
}

// WriteFtyp emits a complete ftyp box.
func (w *Writer) WriteFtyp(major BoxType, minorVersion uint32, compatible []BoxType) {
	w.writeBrandBox(TypeFtyp, major, minorVersion, compatible)
}

// WriteStyp emits a complete styp box (CMAF's fragment-level ftyp analog).
func (w *Writer) WriteStyp(major BoxType, minorVersion uint32, compatible []BoxType) {
	w.writeBrandBox(TypeStyp, major, minorVersion, compatible)
}

func (w *Writer) writeBrandBox(box, major BoxType, minorVersion uint32, compatible []BoxType) {
	start := len(w.buf)
	var hdr [16]byte
	copy(hdr[4:8], box[:])
	copy(hdr[8:12], major[:])
	be.PutUint32(hdr[12:16], minorVersion)
	w.buf = append(w.buf, hdr[:]...)
	for _, c := range compatible {
		w.buf = append(w.buf, c[:]...)
	}
	w.patchSize(start)
}

// WriteMvhd emits a complete mvhd box (version 0: 32-bit times).
func (w *Writer) WriteMvhd(creationTime, modificationTime, duration uint32, timescale uint32, nextTrackID uint32) {
	start := w.writeFullBoxHeader(TypeMvhd, 0, 0)
	var body [96]byte
	be.PutUint32(body[0:4], creationTime)
	be.PutUint32(body[4:8], modificationTime)
	be.PutUint32(body[8:12], timescale)
	be.PutUint32(body[12:16], duration)
	be.PutUint32(body[16:20], uint32(NewFixed1616(1))) // rate 1.0
	be.PutUint16(body[20:22], uint16(NewFixed88(1)))   // volume 1.0
	// body[22:24] reserved, body[24:32] reserved, body[68:92] pre_defined all zero
	identityMatrix := [9]uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}
	off := 32
	for _, v := range identityMatrix {
		be.PutUint32(body[off:off+4], v)
		off += 4
	}
	be.PutUint32(body[92:96], nextTrackID)
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// WriteTkhd emits a complete tkhd box (version 0: 32-bit times).
func (w *Writer) WriteTkhd(flags uint32, trackID uint32, duration uint32, width, height Fixed1616) {
	start := w.writeFullBoxHeader(TypeTkhd, 0, flags)
	var body [80]byte
	// creationTime, modificationTime left zero
	be.PutUint32(body[8:12], trackID)
	// body[12:16] reserved
	be.PutUint32(body[16:20], duration)
	identityMatrix := [9]uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000}
	off := 36
	for _, v := range identityMatrix {
		be.PutUint32(body[off:off+4], v)
		off += 4
	}
	be.PutUint32(body[72:76], uint32(width))
	be.PutUint32(body[76:80], uint32(height))
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// WriteMdhd emits a complete mdhd box (version 0: 32-bit times).
func (w *Writer) WriteMdhd(timescale, duration uint32, language [3]byte) {
	start := w.writeFullBoxHeader(TypeMdhd, 0, 0)
	var body [20]byte
	// creationTime, modificationTime left zero
	be.PutUint32(body[8:12], timescale)
	be.PutUint32(body[12:16], duration)
	be.PutUint16(body[16:18], packLanguage(language))
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// packLanguage packs an ISO-639-2/T language code into the 15-bit
// 5-bits-per-character field mdhd/elst use.
func packLanguage(lang [3]byte) uint16 {
	var v uint16
	for _, c := range lang {
		v <<= 5
		v |= uint16(c-0x60) & 0x1F
	}
	return v
}

// WriteHdlr emits a complete hdlr box.
func (w *Writer) WriteHdlr(handlerType BoxType, name string) {
	start := w.writeFullBoxHeader(TypeHdlr, 0, 0)
	var body [20]byte
	copy(body[4:8], handlerType[:])
	w.buf = append(w.buf, body[:]...)
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, 0) // NUL-terminated
	w.patchSize(start)
}

// WriteVmhd emits a complete vmhd box.
func (w *Writer) WriteVmhd() {
	start := w.writeFullBoxHeader(TypeVmhd, 0, 1)
	var body [8]byte // graphicsmode + 3x opcolor, all zero
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// WriteSmhd emits a complete smhd box.
func (w *Writer) WriteSmhd() {
	start := w.writeFullBoxHeader(TypeSmhd, 0, 0)
	var body [4]byte // balance + reserved, zero
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// WriteDref emits a complete dref box with a single self-contained
// DataEntryUrlBox entry (flags=1, no location URI).
func (w *Writer) WriteDref() {
	start := w.writeFullBoxHeader(TypeDref, 0, 0)
	var count [4]byte
	be.PutUint32(count[:], 1)
	w.buf = append(w.buf, count[:]...)
	w.StartBox(BoxType{'u', 'r', 'l', ' '})
	w.buf = append(w.buf, 0, 0, 0, 1) // version 0, flags 0x000001 (media data is in this file)
	w.EndBox()
	w.patchSize(start)
}

// writeEmptySampleTableStub emits an empty, entry-count-0 instance of one
// of stts/stsc/stsz/stco, as required inside a fragmented stbl.
func (w *Writer) writeEmptySampleTableStub(typ BoxType) {
	start := w.writeFullBoxHeader(typ, 0, 0)
	if typ == TypeStsz {
		var body [8]byte // sample_size=0, sample_count=0
		w.buf = append(w.buf, body[:]...)
	} else {
		var body [4]byte // entry_count=0
		w.buf = append(w.buf, body[:]...)
	}
	w.patchSize(start)
}

func (w *Writer) WriteEmptyStts() { w.writeEmptySampleTableStub(TypeStts) }
func (w *Writer) WriteEmptyStsc() { w.writeEmptySampleTableStub(TypeStsc) }
func (w *Writer) WriteEmptyStsz() { w.writeEmptySampleTableStub(TypeStsz) }
func (w *Writer) WriteEmptyStco() { w.writeEmptySampleTableStub(TypeStco) }

// WriteMfhd emits a complete mfhd box.
func (w *Writer) WriteMfhd(sequenceNumber uint32) {
	start := w.writeFullBoxHeader(TypeMfhd, 0, 0)
	var body [4]byte
	be.PutUint32(body[:], sequenceNumber)
	w.buf = append(w.buf, body[:]...)
	w.patchSize(start)
}

// TfhdFields carries tfhd's flag-gated optional fields. Only the fields
// whose bit is set in the accompanying flags word are written or read;
// the others are ignored.
type TfhdFields struct {
	BaseDataOffset         uint64
	SampleDescriptionIndex uint32
	DefaultSampleDuration  uint32
	DefaultSampleSize      uint32
	DefaultSampleFlags     SampleFlags
}

// tfhd flag bits (ISO/IEC 14496-12 §8.8.7.1).
const (
	TfhdBaseDataOffsetPresent         uint32 = 0x000001
	TfhdSampleDescriptionIndexPresent uint32 = 0x000002
	TfhdDefaultSampleDurationPresent  uint32 = 0x000008
	TfhdDefaultSampleSizePresent      uint32 = 0x000010
	TfhdDefaultSampleFlagsPresent     uint32 = 0x000020
	TfhdDurationIsEmpty               uint32 = 0x010000
	TfhdDefaultBaseIsMoof              uint32 = 0x020000
)

// WriteTfhd emits a complete tfhd box, including only the optional fields
// selected by flags.
func (w *Writer) WriteTfhd(flags uint32, trackID uint32, f TfhdFields) {
	start := w.writeFullBoxHeader(TypeTfhd, 0, flags)
	var trackIDBuf [4]byte
	be.PutUint32(trackIDBuf[:], trackID)
	w.buf = append(w.buf, trackIDBuf[:]...)

	if flags&TfhdBaseDataOffsetPresent != 0 {
		var b [8]byte
		be.PutUint64(b[:], f.BaseDataOffset)
		w.buf = append(w.buf, b[:]...)
	}
	if flags&TfhdSampleDescriptionIndexPresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], f.SampleDescriptionIndex)
		w.buf = append(w.buf, b[:]...)
	}
	if flags&TfhdDefaultSampleDurationPresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], f.DefaultSampleDuration)
		w.buf = append(w.buf, b[:]...)
	}
	if flags&TfhdDefaultSampleSizePresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], f.DefaultSampleSize)
		w.buf = append(w.buf, b[:]...)
	}
	if flags&TfhdDefaultSampleFlagsPresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], uint32(f.DefaultSampleFlags))
		w.buf = append(w.buf, b[:]...)
	}
	w.patchSize(start)
}

// WriteTfdt emits a complete tfdt box, always as version 1 (64-bit base
// media decode time), per the resolved encoding convention.
func (w *Writer) WriteTfdt(baseMediaDecodeTime uint64) {
	start := w.writeFullBoxHeader(TypeTfdt, 1, 0)
	var b [8]byte
	be.PutUint64(b[:], baseMediaDecodeTime)
	w.buf = append(w.buf, b[:]...)
	w.patchSize(start)
}

// trun flag bits (ISO/IEC 14496-12 §8.8.8.1).
const (
	TrunDataOffsetPresent      uint32 = 0x000001
	TrunFirstSampleFlagsPresent uint32 = 0x000004
	TrunSampleDurationPresent  uint32 = 0x000100
	TrunSampleSizePresent      uint32 = 0x000200
	TrunSampleFlagsPresent     uint32 = 0x000400
	TrunSampleCompositionTimeOffsetPresent uint32 = 0x000800
)

// TrunSample is one trun entry; only the fields selected by the trun's
// flags are written.
type TrunSample struct {
	Duration              uint32
	Size                  uint32
	Flags                 SampleFlags
	CompositionTimeOffset int32 // interpreted unsigned when version == 0
}

// WriteTrun emits a complete trun box.
func (w *Writer) WriteTrun(version uint8, flags uint32, dataOffset int32, firstSampleFlags SampleFlags, samples []TrunSample) {
	start := w.writeFullBoxHeader(TypeTrun, version, flags)

	var countBuf [4]byte
	be.PutUint32(countBuf[:], uint32(len(samples)))
	w.buf = append(w.buf, countBuf[:]...)

	if flags&TrunDataOffsetPresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], uint32(dataOffset))
		w.buf = append(w.buf, b[:]...)
	}
	if flags&TrunFirstSampleFlagsPresent != 0 {
		var b [4]byte
		be.PutUint32(b[:], uint32(firstSampleFlags))
		w.buf = append(w.buf, b[:]...)
	}
	for _, s := range samples {
		if flags&TrunSampleDurationPresent != 0 {
			var b [4]byte
			be.PutUint32(b[:], s.Duration)
			w.buf = append(w.buf, b[:]...)
		}
		if flags&TrunSampleSizePresent != 0 {
			var b [4]byte
			be.PutUint32(b[:], s.Size)
			w.buf = append(w.buf, b[:]...)
		}
		if flags&TrunSampleFlagsPresent != 0 {
			var b [4]byte
			be.PutUint32(b[:], uint32(s.Flags))
			w.buf = append(w.buf, b[:]...)
		}
		if flags&TrunSampleCompositionTimeOffsetPresent != 0 {
			var b [4]byte
			be.PutUint32(b[:], uint32(s.CompositionTimeOffset))
			w.buf = append(w.buf, b[:]...)
		}
	}
	w.patchSize(start)
}

// WriteMdat emits a complete mdat box wrapping payload verbatim.
func (w *Writer) WriteMdat(payload []byte) {
	start := len(w.buf)
	var hdr [8]byte
	copy(hdr[4:8], TypeMdat[:])
	w.buf = append(w.buf, hdr[:]...)
	w.buf = append(w.buf, payload...)
	w.patchSize(start)
}

// WriteStsdHeader opens stsd's full-box header and entry count; the
// caller then appends exactly entryCount sample entry boxes before an
// EndBox.
func (w *Writer) WriteStsdHeader(entryCount uint32) {
	w.stack = append(w.stack, len(w.buf))
	var hdr [16]byte
	copy(hdr[4:8], TypeStsd[:])
	// hdr[8:12] is version 0, flags 0
	be.PutUint32(hdr[12:16], entryCount)
	w.buf = append(w.buf, hdr[:]...)
}

// WriteVisualSampleEntry emits one visual sample entry box (avc1/hev1/...)
// wrapping an opaque, already-encoded codec configuration blob.
func (w *Writer) WriteVisualSampleEntry(typ BoxType, width, height uint16, codecConfig []byte) {
	start := len(w.buf)
	var hdr [8]byte
	copy(hdr[4:8], typ[:])
	w.buf = append(w.buf, hdr[:]...)

	var body [78]byte
	be.PutUint16(body[6:8], 1) // data_reference_index
	be.PutUint16(body[24:26], width)
	be.PutUint16(body[26:28], height)
	be.PutUint32(body[28:32], uint32(NewFixed1616(0x48))) // horizresolution 72dpi
	be.PutUint32(body[32:36], uint32(NewFixed1616(0x48))) // vertresolution 72dpi
	be.PutUint16(body[40:42], 1)                          // frame_count
	be.PutUint16(body[74:76], 0x18)                       // depth
	be.PutUint16(body[76:78], 0xFFFF)                     // predefined3 = -1
	w.buf = append(w.buf, body[:]...)

	w.buf = append(w.buf, codecConfig...)
	w.patchSize(start)
}

// WriteAudioSampleEntry emits one audio sample entry box (mp4a/opus/...)
// wrapping an opaque, already-encoded codec configuration blob.
func (w *Writer) WriteAudioSampleEntry(typ BoxType, channelCount, sampleSizeBits uint16, sampleRate uint32, codecConfig []byte) {
	start := len(w.buf)
	var hdr [8]byte
	copy(hdr[4:8], typ[:])
	w.buf = append(w.buf, hdr[:]...)

	var body [28]byte
	be.PutUint16(body[6:8], 1) // data_reference_index
	be.PutUint16(body[16:18], channelCount)
	be.PutUint16(body[18:20], sampleSizeBits)
	be.PutUint32(body[24:28], sampleRate<<16) // packed as 16.16 in the upper half
	w.buf = append(w.buf, body[:]...)

	w.buf = append(w.buf, codecConfig...)
	w.patchSize(start)
}

// WriteGenericSampleEntry emits a sample entry for a box type outside the
// known visual/audio families, wrapping an opaque codec configuration
// blob after the 8-byte SampleEntry base fields.
func (w *Writer) WriteGenericSampleEntry(typ BoxType, codecConfig []byte) {
	start := len(w.buf)
	var hdr [8]byte
	copy(hdr[4:8], typ[:])
	w.buf = append(w.buf, hdr[:]...)

	var base [8]byte
	be.PutUint16(base[6:8], 1) // data_reference_index
	w.buf = append(w.buf, base[:]...)

	w.buf = append(w.buf, codecConfig...)
	w.patchSize(start)
}

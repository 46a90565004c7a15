package bmff

import (
	"github.com/google/uuid"
)

// maxChildIterations bounds the number of children walked inside a single
// composite box, guarding against a pathological or malicious input
// forcing unbounded work.
const maxChildIterations = 1024

// Header is a decoded ISO BMFF box header: 4-byte size, 4-byte type, and
// the two optional extensions (64-bit size, 16-byte UUID type).
type Header struct {
	Size         uint64  // declared size in bytes, including this header
	Type         BoxType
	ExtendedType uuid.UUID // populated only when Type == TypeUUID
	HeaderLen    int       // 8, 16 (extended size) or 24 (uuid) — extended size and uuid stack
}

// peekHeader reads a box header starting at buf[start:] without consuming
// anything beyond the header itself. end is the exclusive bound of the
// enclosing container (or len(buf) at top level).
func peekHeader(buf []byte, start, end int) (Header, error) {
	if end-start < 8 {
		return Header{}, truncatedErr(start, "box header requires at least 8 bytes")
	}
	size32 := be.Uint32(buf[start : start+4])
	var typ BoxType
	copy(typ[:], buf[start+4:start+8])

	h := Header{Type: typ}
	ptr := start + 8

	switch size32 {
	case 0:
		// "to end of enclosing container" — only legal for a top-level box
		// (enforced by the caller, since only the caller knows whether
		// start..end is the whole buffer).
		h.Size = uint64(end - start)
		h.HeaderLen = 8
	case 1:
		if end-ptr < 8 {
			return Header{}, truncatedErr(start, "extended 64-bit size truncated")
		}
		h.Size = be.Uint64(buf[ptr : ptr+8])
		ptr += 8
		h.HeaderLen = 16
	default:
		h.Size = zeroExtend32(size32)
		h.HeaderLen = 8
	}

	if typ == TypeUUID {
		if end-ptr < 16 {
			return Header{}, truncatedErr(start, "uuid extended type truncated")
		}
		id, err := uuid.FromBytes(buf[ptr : ptr+16])
		if err != nil {
			return Header{}, malformedErr(start, "invalid uuid extended type")
		}
		h.ExtendedType = id
		h.HeaderLen += 16
	}

	if h.Size < uint64(h.HeaderLen) {
		return Header{}, malformedErr(start, "declared size smaller than header length")
	}
	if uint64(start)+h.Size > uint64(end) {
		return Header{}, truncatedErr(start, "declared box size overruns enclosing container")
	}

	return h, nil
}

// BodyRange returns the [start,end) byte range of h's body within the
// buffer it was read from, given the box's start offset.
func (h Header) BodyRange(boxStart int) (int, int) {
	return boxStart + h.HeaderLen, boxStart + int(h.Size)
}

// End returns the exclusive end offset of the box starting at boxStart.
func (h Header) End(boxStart int) int { return boxStart + int(h.Size) }

// writeHeader writes a size+type header for typ into buf at offset,
// choosing the 64-bit extended size form only when size doesn't fit in 32
// bits. It returns the number of header bytes written. It never writes a
// uuid extended type, and panics for a uuid box that needs a 64-bit size.
func writeHeader(buf []byte, offset int, typ BoxType, size uint64) int {
	if size > 0xFFFFFFFF {
		be.PutUint32(buf[offset:], 1)
		copy(buf[offset+4:offset+8], typ[:])
		be.PutUint64(buf[offset+8:], size)
		if typ == TypeUUID {
			panic("bmff: uuid extended type with 64-bit size not supported")
		}
		return 16
	}
	be.PutUint32(buf[offset:], uint32(size))
	copy(buf[offset+4:offset+8], typ[:])
	return 8
}

// HeaderLen returns the header length Writer uses for a box of type typ
// (always 8 — Writer never emits 64-bit extended sizes or uuid types,
// since no box this library produces needs them; decode still accepts
// both).
func HeaderLen(typ BoxType) int { return 8 }

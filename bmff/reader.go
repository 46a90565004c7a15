package bmff

import "github.com/google/uuid"

// frame saves a Reader's cursor state across an Enter/Exit pair.
type frame struct {
	pos int
	end int

	// the box the cursor was positioned on when Enter was called
	curType      BoxType
	curStart     int
	curSize      uint64
	curHeaderLen int
	curExtType   uuid.UUID
}

// Reader is a cursor over an in-memory ISO BMFF buffer. It walks sibling
// boxes at the current nesting level with Next, and descends into a
// container box's children with Enter/Exit. Payload accessors such as
// ReadMdat return slices that alias the input buffer rather than copies.
//
// A zero Reader is not usable; construct one with NewReader.
type Reader struct {
	buf []byte
	pos int
	end int

	haveCur      bool
	curType      BoxType
	curStart     int
	curSize      uint64
	curHeaderLen int
	curExtType   uuid.UUID

	stack []frame
	err   error
}

// NewReader returns a Reader positioned at the start of buf, ready to walk
// its top-level boxes.
func NewReader(buf []byte) Reader {
	return Reader{buf: buf, pos: 0, end: len(buf)}
}

// Next advances to the next sibling box at the current nesting level and
// reports whether one was found. On false, Err reports why the walk
// stopped (nil at clean end of input).
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if r.end-r.pos < 8 {
		return false
	}
	h, err := peekHeader(r.buf, r.pos, r.end)
	if err != nil {
		r.err = err
		return false
	}
	if be.Uint32(r.buf[r.pos:r.pos+4]) == 0 && len(r.stack) > 0 {
		r.err = malformedErr(r.pos, "box size 0 (to end of container) is only valid at top level")
		return false
	}

	r.haveCur = true
	r.curType = h.Type
	r.curStart = r.pos
	r.curSize = h.Size
	r.curHeaderLen = h.HeaderLen
	r.curExtType = h.ExtendedType

	r.pos += int(h.Size) // strict cursor advancement: h.Size >= 8 always
	return true
}

// Err reports the first error that stopped the walk, or nil.
func (r *Reader) Err() error { return r.err }

// Type returns the current box's FourCC.
func (r *Reader) Type() BoxType { return r.curType }

// Size returns the current box's declared size, including its header.
func (r *Reader) Size() uint64 { return r.curSize }

// UUID returns the current box's extended type, meaningful only when
// Type() == TypeUUID.
func (r *Reader) UUID() uuid.UUID { return r.curExtType }

// rawBody returns the current box's body, including a version/flags word
// if the box is a full box.
func (r *Reader) rawBody() []byte {
	start := r.curStart + r.curHeaderLen
	end := r.curStart + int(r.curSize)
	if start > end || start > len(r.buf) || end > len(r.buf) {
		return nil
	}
	return r.buf[start:end]
}

// Version returns the current full box's version byte, or 0 if the
// current box type isn't a full box.
func (r *Reader) Version() uint8 {
	if !IsFullBox(r.curType) {
		return 0
	}
	b := r.rawBody()
	if len(b) < 4 {
		return 0
	}
	return b[0]
}

// Flags returns the current full box's 24-bit flag word, or 0 if the
// current box type isn't a full box.
func (r *Reader) Flags() uint32 {
	if !IsFullBox(r.curType) {
		return 0
	}
	b := r.rawBody()
	if len(b) < 4 {
		return 0
	}
	return uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Data returns the current box's logical content: the body with the
// version/flags word stripped for full boxes, or the raw body otherwise.
func (r *Reader) Data() []byte {
	b := r.rawBody()
	if IsFullBox(r.curType) {
		if len(b) < 4 {
			return nil
		}
		return b[4:]
	}
	return b
}

// RawBox returns the current box's entire byte range, header included.
func (r *Reader) RawBox() []byte {
	start := r.curStart
	end := r.curStart + int(r.curSize)
	if end > len(r.buf) {
		return nil
	}
	return r.buf[start:end]
}

// Enter descends into the current box's children: Next calls after Enter
// walk the current box's logical content (Data()'s range) as a new
// nesting level. Exit must be called to return to the parent level.
func (r *Reader) Enter() {
	bodyStart := r.curStart + r.curHeaderLen
	bodyEnd := r.curStart + int(r.curSize)
	if IsFullBox(r.curType) {
		bodyStart += 4
	}
	if bodyStart > bodyEnd {
		bodyStart = bodyEnd
	}

	r.stack = append(r.stack, frame{pos: r.curStart + int(r.curSize), end: r.end,
		curType: r.curType, curStart: r.curStart, curSize: r.curSize, curHeaderLen: r.curHeaderLen, curExtType: r.curExtType})
	r.pos = bodyStart
	r.end = bodyEnd
	r.haveCur = false
}

// Exit returns to the nesting level active before the matching Enter,
// positioned again on the container box Enter descended into. It is a
// no-op if called without a matching Enter.
func (r *Reader) Exit() {
	if len(r.stack) == 0 {
		return
	}
	f := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.pos = f.pos
	r.end = f.end
	r.haveCur = true
	r.curType = f.curType
	r.curStart = f.curStart
	r.curSize = f.curSize
	r.curHeaderLen = f.curHeaderLen
	r.curExtType = f.curExtType
}

// Skip advances the cursor by n bytes within the current nesting level,
// without consuming a box. Used to step over fixed fields that precede a
// box list (e.g. stsd's entry_count, a sample entry's fixed prefix).
func (r *Reader) Skip(n int) {
	r.pos += n
	if r.pos > r.end {
		r.pos = r.end
	}
}

// EntryCount reads the 4-byte entry/array count that leads a full box's
// logical content (stsd, dref). Callers must only call this when Data()
// has at least 4 bytes.
func (r *Reader) EntryCount() uint32 {
	d := r.Data()
	if len(d) < 4 {
		return 0
	}
	return be.Uint32(d[0:4])
}

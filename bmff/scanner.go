package bmff

import (
	"io"
)

// Entry describes one top-level box found by Scanner, without its body
// having been read yet.
type Entry struct {
	Type      BoxType
	Size      uint64
	HeaderLen int
}

// DataSize returns the number of body bytes that follow the header.
func (e Entry) DataSize() int64 { return int64(e.Size) - int64(e.HeaderLen) }

// Scanner finds top-level box boundaries over an io.Reader without
// requiring the whole stream to be buffered at once: only the 8 (or 16,
// 24, or 32) header bytes of each box are read eagerly. Callers decide
// whether to read a given box's body with ReadBody or skip it.
type Scanner struct {
	r       io.Reader
	hdr     [32]byte
	cur     Entry
	pending int64 // body bytes not yet consumed from the current entry
	err     error
}

// NewScanner returns a Scanner reading top-level boxes from r.
func NewScanner(r io.Reader) *Scanner { return &Scanner{r: r} }

// Next discards any unread body bytes from the previous entry, then reads
// the next box header. It reports false at clean EOF or on error; see Err.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	if s.pending > 0 {
		if _, err := io.CopyN(io.Discard, s.r, s.pending); err != nil {
			s.err = err
			return false
		}
		s.pending = 0
	}

	if _, err := io.ReadFull(s.r, s.hdr[:8]); err != nil {
		if err != io.EOF {
			s.err = err
		}
		return false
	}
	size32 := be.Uint32(s.hdr[0:4])
	var typ BoxType
	copy(typ[:], s.hdr[4:8])

	headerLen := 8
	var size uint64
	switch size32 {
	case 0:
		s.err = malformedErr(0, "scanner requires an explicit box size, got size 0 (to end of stream)")
		return false
	case 1:
		if _, err := io.ReadFull(s.r, s.hdr[8:16]); err != nil {
			s.err = err
			return false
		}
		size = be.Uint64(s.hdr[8:16])
		headerLen = 16
	default:
		size = zeroExtend32(size32)
	}

	if typ == TypeUUID {
		if _, err := io.ReadFull(s.r, s.hdr[headerLen:headerLen+16]); err != nil {
			s.err = err
			return false
		}
		headerLen += 16
	}

	if size < uint64(headerLen) {
		s.err = malformedErr(0, "scanner found declared size smaller than header length")
		return false
	}

	s.cur = Entry{Type: typ, Size: size, HeaderLen: headerLen}
	s.pending = int64(size) - int64(headerLen)
	return true
}

// Entry returns the most recently scanned entry.
func (s *Scanner) Entry() Entry { return s.cur }

// ReadBody reads the current entry's body into buf, which must be at
// least Entry().DataSize() bytes. It consumes exactly DataSize() bytes
// regardless of len(buf).
func (s *Scanner) ReadBody(buf []byte) (int, error) {
	n := int(s.cur.Size) - s.cur.HeaderLen
	if n < 0 {
		return 0, malformedErr(0, "scanner entry body size negative")
	}
	if len(buf) < n {
		return 0, malformedErr(0, "ReadBody buffer shorter than entry body")
	}
	read, err := io.ReadFull(s.r, buf[:n])
	if err != nil {
		s.err = err
		return read, err
	}
	s.pending = 0
	return read, nil
}

// Err reports the first error Next or ReadBody encountered, or nil at a
// clean EOF.
func (s *Scanner) Err() error { return s.err }

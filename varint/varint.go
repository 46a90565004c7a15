// Package varint implements the QUIC-style variable-length integer
// encoding (RFC 9000 §16) used throughout LOC object envelopes: the two
// high bits of the first byte select a 1/2/4/8-byte encoding, and the
// remaining 6/14/30/62 bits hold the value. This package wraps
// quic-go's quicvarint codec with this module's structured error
// taxonomy rather than introducing a second implementation.
package varint

import (
	"bytes"

	"github.com/quic-go/quic-go/quicvarint"

	"github.com/tetsuo/moq/bmff"
)

// Max is the largest value representable in the encoding (62 bits).
const Max = quicvarint.Max

// Len returns the number of bytes Append would write for v. It panics if
// v exceeds Max, matching quicvarint's own contract.
func Len(v uint64) int { return int(quicvarint.Len(v)) }

// Append appends v's shortest varint encoding to buf and returns the
// extended slice.
func Append(buf []byte, v uint64) []byte { return quicvarint.Append(buf, v) }

// Parse decodes one varint from the start of buf, returning the value and
// the number of bytes consumed. It never reads past buf's declared
// length: quicvarint.Read only ever consumes the length implied by the
// first byte's length tag. A non-minimal encoding is accepted, as
// quicvarint accepts it.
func Parse(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, &bmff.Error{Kind: bmff.Truncated, Offset: 0, Msg: "varint: empty buffer"}
	}
	r := bytes.NewReader(buf)
	v, err := quicvarint.Read(r)
	if err != nil {
		return 0, 0, &bmff.Error{Kind: bmff.Truncated, Offset: 0, Msg: "varint: truncated encoding", Cause: err}
	}
	consumed := len(buf) - r.Len()
	return v, consumed, nil
}

// ParseAt decodes one varint from buf starting at offset, returning the
// value and the absolute offset immediately after it.
func ParseAt(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset > len(buf) {
		return 0, offset, &bmff.Error{Kind: bmff.OutOfRange, Offset: offset, Msg: "varint: offset out of range"}
	}
	v, n, err := Parse(buf[offset:])
	if err != nil {
		if e, ok := err.(*bmff.Error); ok {
			e.Offset = offset
		}
		return 0, offset, err
	}
	return v, offset + n, nil
}

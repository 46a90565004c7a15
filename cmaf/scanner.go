package cmaf

import (
	"bytes"

	"github.com/tetsuo/moq/bmff"
)

// ScanFragments demultiplexes a concatenated blob of CMAF fragments into
// their raw byte ranges, without decoding their contents. It tolerates
// junk boxes between fragments (skipped whole, by their own declared
// size) and stops at the first position it can no longer make progress
// from. Built on bmff.Scanner's header-only box walk.
func ScanFragments(buf []byte) [][]byte {
	br := bytes.NewReader(buf)
	sc := bmff.NewScanner(br)

	var frags [][]byte
	fragStart := int64(-1)

	for {
		if !sc.Next() {
			return frags
		}
		entry := sc.Entry()
		// Next has consumed the input up to the end of this box's header.
		offset := int64(len(buf)) - int64(br.Len()) - int64(entry.HeaderLen)
		end := offset + int64(entry.Size)
		if end > int64(len(buf)) {
			return frags
		}

		switch entry.Type {
		case bmff.TypeStyp:
			// A styp with no mdat before it yielded nothing; restart the
			// pending fragment here.
			fragStart = offset
		case bmff.TypeMdat:
			if fragStart >= 0 {
				frags = append(frags, buf[fragStart:end])
				fragStart = -1
			}
		}
	}
}

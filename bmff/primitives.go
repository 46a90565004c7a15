// Package bmff implements encoding and decoding of ISO Base Media File
// Format (ISO/IEC 14496-12) boxes, scoped to the CMAF `cmfc`/`cmf2` profile:
// the styp+moof+mdat fragment triad and the ftyp+moov init segment
// hierarchy. The package is a pure codec — every exported function is a
// byte-slice-in/byte-slice-out (or typed-value-out) transform with no I/O
// and no shared mutable state.
package bmff

import "encoding/binary"

// be is the byte order for every multi-byte field in this format. ISO BMFF
// is defined entirely in big-endian.
var be = binary.BigEndian

// BoxType is a 4-byte box type identifier (a FourCC), always exactly 4
// US-ASCII bytes, compared bytewise and never transcoded.
type BoxType [4]byte

func (t BoxType) String() string { return string(t[:]) }

// Known box types.
var (
	TypeFtyp = BoxType{'f', 't', 'y', 'p'}
	TypeStyp = BoxType{'s', 't', 'y', 'p'}
)

// Movie structure boxes (moov and children).
var (
	TypeMoov = BoxType{'m', 'o', 'o', 'v'}
	TypeMvhd = BoxType{'m', 'v', 'h', 'd'}
	TypeTrak = BoxType{'t', 'r', 'a', 'k'}
	TypeTkhd = BoxType{'t', 'k', 'h', 'd'}
	TypeMdia = BoxType{'m', 'd', 'i', 'a'}
	TypeMdhd = BoxType{'m', 'd', 'h', 'd'}
	TypeHdlr = BoxType{'h', 'd', 'l', 'r'}
	TypeMinf = BoxType{'m', 'i', 'n', 'f'}
	TypeVmhd = BoxType{'v', 'm', 'h', 'd'}
	TypeSmhd = BoxType{'s', 'm', 'h', 'd'}
	TypeDinf = BoxType{'d', 'i', 'n', 'f'}
	TypeDref = BoxType{'d', 'r', 'e', 'f'}
)

// Sample table boxes (stbl children). Emitted/read as empty stubs for
// fragmented profiles per spec.
var (
	TypeStbl = BoxType{'s', 't', 'b', 'l'}
	TypeStsd = BoxType{'s', 't', 's', 'd'}
	TypeStts = BoxType{'s', 't', 't', 's'}
	TypeStsc = BoxType{'s', 't', 's', 'c'}
	TypeStsz = BoxType{'s', 't', 's', 'z'}
	TypeStco = BoxType{'s', 't', 'c', 'o'}
)

// Fragment boxes (moof and children).
var (
	TypeMoof = BoxType{'m', 'o', 'o', 'f'}
	TypeMfhd = BoxType{'m', 'f', 'h', 'd'}
	TypeTraf = BoxType{'t', 'r', 'a', 'f'}
	TypeTfhd = BoxType{'t', 'f', 'h', 'd'}
	TypeTfdt = BoxType{'t', 'f', 'd', 't'}
	TypeTrun = BoxType{'t', 'r', 'u', 'n'}
)

// Data boxes.
var (
	TypeMdat = BoxType{'m', 'd', 'a', 't'}
	TypeFree = BoxType{'f', 'r', 'e', 'e'}
	TypeSkip = BoxType{'s', 'k', 'i', 'p'}
)

// Sample entry boxes (children of stsd), grouped by family.
var (
	TypeAvc1 = BoxType{'a', 'v', 'c', '1'}
	TypeAvc3 = BoxType{'a', 'v', 'c', '3'}
	TypeHev1 = BoxType{'h', 'e', 'v', '1'}
	TypeHvc1 = BoxType{'h', 'v', 'c', '1'}
	TypeVp09 = BoxType{'v', 'p', '0', '9'}
	TypeAv01 = BoxType{'a', 'v', '0', '1'}

	TypeMp4a = BoxType{'m', 'p', '4', 'a'}
	TypeOpus = BoxType{'o', 'p', 'u', 's'}
	TypeOpusCap = BoxType{'O', 'p', 'u', 's'}
	TypeAc3  = BoxType{'a', 'c', '-', '3'}
	TypeEc3  = BoxType{'e', 'c', '-', '3'}
)

// TypeUUID is the box type signalling a 16-byte extended UUID type follows
// the 4-byte type field.
var TypeUUID = BoxType{'u', 'u', 'i', 'd'}

// IsFullBox reports whether t's body begins with a version/flags word.
func IsFullBox(t BoxType) bool {
	switch t {
	case TypeMvhd, TypeTkhd, TypeMdhd, TypeHdlr, TypeVmhd, TypeSmhd,
		TypeDref, TypeStsd, TypeStts, TypeStsc, TypeStsz, TypeStco,
		TypeMfhd, TypeTfhd, TypeTfdt, TypeTrun:
		return true
	}
	return false
}

// IsContainerBox reports whether t is a container that holds child boxes.
func IsContainerBox(t BoxType) bool {
	switch t {
	case TypeMoov, TypeTrak, TypeMdia, TypeMinf, TypeDinf, TypeStbl,
		TypeMoof, TypeTraf:
		return true
	}
	return false
}

// IsVisualSampleEntry reports whether t is a known visual sample entry
// FourCC (spec.md §4.6's Visual family).
func IsVisualSampleEntry(t BoxType) bool {
	switch t {
	case TypeAvc1, TypeAvc3, TypeHev1, TypeHvc1, TypeVp09, TypeAv01:
		return true
	}
	return false
}

// IsAudioSampleEntry reports whether t is a known audio sample entry
// FourCC (spec.md §4.6's Audio family).
func IsAudioSampleEntry(t BoxType) bool {
	switch t {
	case TypeMp4a, TypeOpus, TypeOpusCap, TypeAc3, TypeEc3:
		return true
	}
	return false
}

// Fixed1616 is a 16.16 fixed-point number (dimensions, sample rate). The
// integer part occupies the upper 16 bits.
type Fixed1616 uint32

// NewFixed1616 builds a 16.16 value from an integer part with a zero
// fractional part.
func NewFixed1616(intPart uint16) Fixed1616 { return Fixed1616(uint32(intPart) << 16) }

// Int returns the integer part, extracted with a logical right shift —
// an arithmetic shift would corrupt large sample rates, per spec.
func (f Fixed1616) Int() uint16 { return uint16(uint32(f) >> 16) }

// Fixed88 is an 8.8 fixed-point number (volume). The integer part occupies
// the upper 8 bits.
type Fixed88 uint16

// NewFixed88 builds an 8.8 value from an integer part with a zero
// fractional part.
func NewFixed88(intPart uint8) Fixed88 { return Fixed88(uint16(intPart) << 8) }

// Int returns the integer part.
func (f Fixed88) Int() uint8 { return uint8(uint16(f) >> 8) }

// zeroExtend32 zero-extends a decoded 32-bit unsigned field into the
// 64-bit domain. ISO BMFF "unsigned long" fields must never be
// sign-extended.
func zeroExtend32(v uint32) uint64 { return uint64(v) }

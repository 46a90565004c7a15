package bmff

import "fmt"

// Kind classifies a decode or validation failure.
type Kind int

const (
	// Truncated means the buffer ended before a declared or required size.
	Truncated Kind = iota
	// Malformed means a size/version/flags combination is impossible, or a
	// cursor failed to advance.
	Malformed
	// OutOfRange means a decoded or caller-supplied value fell outside its
	// spec-mandated domain.
	OutOfRange
	// UnknownBox means an unrecognised box type was found at a position
	// where a specific type was expected. Unknown boxes found during a
	// normal child walk are not errors; see Warning.
	UnknownBox
	// InvariantViolation means the tree is structurally complete but
	// semantically incomplete (validator use only).
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case Malformed:
		return "malformed"
	case OutOfRange:
		return "out of range"
	case UnknownBox:
		return "unknown box"
	case InvariantViolation:
		return "invariant violation"
	default:
		return "unknown error kind"
	}
}

// Error is the structured error type returned by every decoder and
// validator in this module. It carries the byte offset at which the
// problem was found so callers can point at the input.
type Error struct {
	Kind   Kind
	Offset int
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bmff: %s at offset %d: %s: %v", e.Kind, e.Offset, e.Msg, e.Cause)
	}
	return fmt.Sprintf("bmff: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, offset int, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: msg}
}

func truncatedErr(offset int, msg string) *Error {
	return newErr(Truncated, offset, msg)
}

func malformedErr(offset int, msg string) *Error {
	return newErr(Malformed, offset, msg)
}

// Warning records a recoverable, non-fatal event encountered during a
// decode: an unknown box type skipped over, or an unknown LOC extension ID
// encountered. Decoders append these instead of aborting, per the Unknown
// error policy: unknown is not fatal.
type Warning struct {
	Offset int
	Type   BoxType
	Msg    string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset %d: %s: %s", w.Offset, w.Type, w.Msg)
}

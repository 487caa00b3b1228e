package ihex

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the class of a failure. Every kind is itself an error,
// so callers can match with errors.Is(err, ihex.ErrChecksum).
type ErrorKind uint

// Error kinds, first detected wins
const (
	NoError ErrorKind = iota
	ErrOverlap
	ErrMissingEOF
	ErrStartMarker
	ErrHexDigit
	ErrLineTerminator
	ErrAddressField
	ErrLineLength
	ErrChecksum
	ErrUnsupportedRecordType
	ErrAllocation
	ErrDump
	ErrAddressRange
	ErrLineSource
)

func (k ErrorKind) Error() string {
	switch k {
	case NoError:
		return "no error"
	case ErrOverlap:
		return "data segments overlapping"
	case ErrMissingEOF:
		return "no end of file line"
	case ErrStartMarker:
		return "wrong start line char"
	case ErrHexDigit:
		return "wrong ascii hex encoding"
	case ErrLineTerminator:
		return "wrong end of line char"
	case ErrAddressField:
		return "incorrect address field"
	case ErrLineLength:
		return "line length error"
	case ErrChecksum:
		return "checksum error"
	case ErrUnsupportedRecordType:
		return "unsupported record type"
	case ErrAllocation:
		return "memory allocation error"
	case ErrDump:
		return "write dump stream error"
	case ErrAddressRange:
		return "data exceeds 32-bit address space"
	case ErrLineSource:
		return "read line stream error"
	}
	return "unknown error"
}

// Error is returned by every fallible operation of Memory.
type Error struct {
	Kind    ErrorKind
	Line    uint   // 1-based input line, 0 when not parsing
	Message string // optional detail
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	str := e.Kind.Error()
	if e.Message != "" {
		str += ": " + e.Message
	}
	if e.Err != nil {
		str += ": " + e.Err.Error()
	}
	if e.Line != 0 {
		str = fmt.Sprintf("%s at line %d", str, e.Line)
	}
	return str
}

// Is reports whether target is the ErrorKind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err. Nil and errors not produced by
// this package give NoError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return NoError
}

func newError(kind ErrorKind, msg string, line uint) *Error {
	return &Error{Kind: kind, Message: msg, Line: line}
}

func wrapError(kind ErrorKind, err error, line uint) *Error {
	return &Error{Kind: kind, Err: err, Line: line}
}

package insts

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure reported by the decode pipeline.
type Kind uint8

// Failure kinds.
const (
	KindUnsupportedOpcode Kind = iota + 1
	KindMalformedField
	KindRenderFailure
	KindInputExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedOpcode:
		return "unsupported opcode"
	case KindMalformedField:
		return "malformed field"
	case KindRenderFailure:
		return "render failure"
	case KindInputExhausted:
		return "input exhausted"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Sentinel errors, one per Kind.
var (
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrMalformedField    = errors.New("malformed field")
	ErrRenderFailure     = errors.New("render failure")
	ErrInputExhausted    = errors.New("input exhausted")
)

// Sentinel returns the sentinel error for k.
func (k Kind) Sentinel() error {
	switch k {
	case KindUnsupportedOpcode:
		return ErrUnsupportedOpcode
	case KindMalformedField:
		return ErrMalformedField
	case KindRenderFailure:
		return ErrRenderFailure
	case KindInputExhausted:
		return ErrInputExhausted
	}
	return nil
}

// Error is a failure with the context needed to diagnose it.
type Error struct {
	Kind   Kind
	Opcode byte
	// Offset is the cursor position of the instruction, or -1 if unknown.
	Offset int
	// Err is an optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (opcode 0x%02X", e.Kind, e.Opcode)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or 0 if err is not one of
// this package's failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range []Kind{KindUnsupportedOpcode, KindMalformedField, KindRenderFailure, KindInputExhausted} {
		if errors.Is(err, k.Sentinel()) {
			return k
		}
	}
	return 0
}

package sms

import (
	"errors"
	"fmt"
)

// The kinds of errors reported by the codecs of this package. Use errors.Is to check the kind of a returned error.
var (
	ErrMalformedAlphabetData     = errors.New("malformed alphabet data")
	ErrUnsupportedCharacter      = errors.New("unsupported character")
	ErrInvalidAddress            = errors.New("invalid address")
	ErrInvalidTimestamp          = errors.New("invalid timestamp")
	ErrUnsupportedValidityFormat = errors.New("unsupported validity period format")
	ErrMalformedHeader           = errors.New("malformed user data header")
	ErrUnknownTPDUType           = errors.New("unknown TPDU type")
	ErrTruncatedPDU              = errors.New("truncated PDU")
	ErrUnsupportedDCS            = errors.New("unsupported data coding scheme")
	ErrUserDataTooLong           = errors.New("user data too long")
	ErrInvalidFailureCause       = errors.New("invalid failure cause")
)

// DecodeError describes a structural problem at a certain byte offset.
// When returned by Decode, the offset is relative to the first octet of the TPDU.
type DecodeError struct {
	Err    error
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Offset, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErrorf(kind error, offset int, format string, args ...any) error {
	return &DecodeError{
		Err:    kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// shiftOffset moves the offset of a DecodeError by base, so that errors of nested codecs
// refer to the position inside the enclosing PDU.
func shiftOffset(err error, base int) error {
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		return err
	}
	return &DecodeError{
		Err:    decodeErr.Err,
		Offset: decodeErr.Offset + base,
		Detail: decodeErr.Detail,
	}
}

package pds

import (
	"errors"
	"fmt"
)

// Format errors. A *FormatError wraps exactly one of these.
var (
	ErrTooSmall           = errors.New("pds: file too small")
	ErrBadMagic           = errors.New("pds: wrong magic sequence")
	ErrUnknownPixelFormat = errors.New("pds: unknown pixel format")
	ErrBadDimensions      = errors.New("pds: invalid frame dimensions")
	ErrSizeMismatch       = errors.New("pds: wrong file size")
)

// Usage errors.
var (
	ErrClosed          = errors.New("pds: movie is closed")
	ErrFrameOutOfRange = errors.New("pds: frame index out of range")
)

// FormatError reports a file that is not a well-formed PDS movie.
type FormatError struct {
	Path   string // may be empty when reading from an io.ReaderAt
	Reason error
	Detail string
}

func (e *FormatError) Error() string {
	msg := e.Reason.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Reason
}

// IOError reports a failure of the underlying file: open, seek or read.
type IOError struct {
	Op     string
	Offset int64 // -1 when not applicable
	Err    error
}

func (e *IOError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("pds: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pds: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// RangeError reports a frame index outside [0, Count).
type RangeError struct {
	Index int
	Count uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("pds: frame index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *RangeError) Unwrap() error {
	return ErrFrameOutOfRange
}

// Package pds provides random-access reading of Pixelink PDS movie files.
//
// A PDS movie is an 8-byte file header (magic and frame count) followed by
// a sequence of fixed-size frame records. Each record is a 584-byte metadata
// block followed by the frame's pixel payload. The movie dimensions and
// pixel format are stored at fixed absolute offsets that fall inside the
// metadata block of the first frame.
//
// Header fields are little-endian; 16-bit pixel samples are big-endian.
//
// Basic usage:
//
//	m, err := pds.OpenFile("movie.pds")
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	f, err := m.Frame(0)
//	ts, err := m.Timestamps()
package pds

import (
	"fmt"
	"math"
)

// Magic is the four-byte sequence every PDS movie starts with.
var Magic = [4]byte{0x04, 0x04, 0x04, 0x04}

// Fixed layout of the PDS container.
const (
	// FileHeaderSize is the size of the magic and frame count.
	FileHeaderSize = 8
	// FrameHeaderSize is the size of the metadata block preceding each
	// frame's pixel payload.
	FrameHeaderSize = 584

	offsetFrameCount  = 0x04
	offsetWidth       = 0x1b4
	offsetHeight      = 0x1b8
	offsetPixelFormat = 0x1c8
	layoutFieldsEnd   = offsetPixelFormat + 4

	// timestampOffset is relative to the start of a frame header.
	timestampOffset = 0x04
)

// maxDimension bounds the width and height fields before float-to-int
// truncation.
const maxDimension = 1 << 31

// PixelFormat identifies the sample encoding of the pixel payload.
type PixelFormat uint8

// Supported pixel formats.
const (
	PixelFormatMono8  PixelFormat = 0
	PixelFormatMono16 PixelFormat = 1
)

// String returns the string representation of the pixel format.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatMono8:
		return "mono8"
	case PixelFormatMono16:
		return "mono16"
	default:
		return fmt.Sprintf("PixelFormat(%d)", p)
	}
}

// BytesPerSample returns the size of one sample in bytes.
func (p PixelFormat) BytesPerSample() int {
	if p == PixelFormatMono16 {
		return 2
	}
	return 1
}

// pixelFormatFromCode maps the float code stored in the header.
// Only exact 0.0 and 1.0 are accepted.
func pixelFormatFromCode(code float32) (PixelFormat, bool) {
	switch code {
	case 0.0:
		return PixelFormatMono8, true
	case 1.0:
		return PixelFormatMono16, true
	}
	return 0, false
}

// dimensionFromFloat truncates a header dimension toward zero.
func dimensionFromFloat(v float32) (int, bool) {
	f := float64(v)
	if math.IsNaN(f) || f <= -1 || f >= maxDimension {
		return 0, false
	}
	return int(f), true
}

// Layout describes the geometry of a PDS movie.
type Layout struct {
	Frames         uint32
	Width          int
	Height         int
	BytesPerSample int
}

// PixelFormat returns the pixel format matching BytesPerSample.
func (l Layout) PixelFormat() PixelFormat {
	if l.BytesPerSample == 2 {
		return PixelFormatMono16
	}
	return PixelFormatMono8
}

// FrameSize returns the size in bytes of one frame's pixel payload.
func (l Layout) FrameSize() int {
	return l.Width * l.Height * l.BytesPerSample
}

// RecordSize returns the size in bytes of one frame record, metadata
// block included.
func (l Layout) RecordSize() int64 {
	return FrameHeaderSize + int64(l.FrameSize())
}

// FileSize returns the exact file size implied by the layout,
// or -1 if it does not fit in an int64.
func (l Layout) FileSize() int64 {
	if l.Frames == 0 {
		return FileHeaderSize
	}
	if l.Width < 0 || l.Height < 0 || l.BytesPerSample < 0 {
		return -1
	}
	limit := int64(math.MaxInt64)
	frame := int64(l.Width)
	for _, f := range []int64{int64(l.Height), int64(l.BytesPerSample)} {
		if f != 0 && frame > limit/f {
			return -1
		}
		frame *= f
	}
	if frame > limit-FrameHeaderSize {
		return -1
	}
	record := frame + FrameHeaderSize
	n := int64(l.Frames)
	if record > (limit-FileHeaderSize)/n {
		return -1
	}
	return FileHeaderSize + record*n
}

// FrameOffset returns the absolute offset of frame i's metadata block.
func (l Layout) FrameOffset(i int) int64 {
	return FileHeaderSize + l.RecordSize()*int64(i)
}

// PixelOffset returns the absolute offset of frame i's pixel payload.
func (l Layout) PixelOffset(i int) int64 {
	return l.FrameOffset(i) + FrameHeaderSize
}

// TimestampOffset returns the absolute offset of frame i's timestamp.
func (l Layout) TimestampOffset(i int) int64 {
	return l.FrameOffset(i) + timestampOffset
}

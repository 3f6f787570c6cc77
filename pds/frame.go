package pds

import (
	"bytes"
	"image"

	"github.com/pdsmovie/go-pds/internal/xdr"
)

// Frame holds the pixel plane of a single frame.
//
// Pix stores the samples exactly as they appear in the file: row-major,
// Height rows of Width samples, each sample BytesPerSample bytes wide and
// big-endian when 16-bit.
type Frame struct {
	Width          int
	Height         int
	BytesPerSample int
	Pix            []byte
}

// NewFrame allocates a zeroed frame with the given geometry.
func NewFrame(width, height, bytesPerSample int) *Frame {
	return &Frame{
		Width:          width,
		Height:         height,
		BytesPerSample: bytesPerSample,
		Pix:            make([]byte, width*height*bytesPerSample),
	}
}

// Shape returns (height, width).
func (f *Frame) Shape() [2]int {
	return [2]int{f.Height, f.Width}
}

// At returns the sample at the given row and column.
func (f *Frame) At(row, col int) uint16 {
	i := row*f.Width + col
	if f.BytesPerSample == 2 {
		return xdr.Uint16BE(f.Pix, i)
	}
	return uint16(f.Pix[i])
}

// Set stores a sample at the given row and column.
// For 8-bit frames v is truncated to its low byte.
func (f *Frame) Set(row, col int, v uint16) {
	i := row*f.Width + col
	if f.BytesPerSample == 2 {
		xdr.PutUint16BE(f.Pix, i, v)
		return
	}
	f.Pix[i] = byte(v)
}

// Row returns the decoded samples of one row.
func (f *Frame) Row(row int) []uint16 {
	stride := f.Width * f.BytesPerSample
	out := make([]uint16, f.Width)
	xdr.DecodeSamples(out, f.Pix[row*stride:(row+1)*stride], f.BytesPerSample)
	return out
}

// Values returns all samples decoded in row-major order.
func (f *Frame) Values() []uint16 {
	out := make([]uint16, f.Width*f.Height)
	xdr.DecodeSamples(out, f.Pix, f.BytesPerSample)
	return out
}

// Image returns the frame as an *image.Gray or *image.Gray16 that shares
// Pix with the frame.
func (f *Frame) Image() image.Image {
	r := image.Rect(0, 0, f.Width, f.Height)
	if f.BytesPerSample == 2 {
		return &image.Gray16{Pix: f.Pix, Stride: 2 * f.Width, Rect: r}
	}
	return &image.Gray{Pix: f.Pix, Stride: f.Width, Rect: r}
}

// Equal reports whether two frames have the same geometry and samples.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Width == o.Width && f.Height == o.Height &&
		f.BytesPerSample == o.BytesPerSample && bytes.Equal(f.Pix, o.Pix)
}

// Stack holds the pixel planes of a whole movie, frame after frame.
type Stack struct {
	Frames         int
	Width          int
	Height         int
	BytesPerSample int
	Pix            []byte
}

// Shape returns (frames, height, width).
func (s *Stack) Shape() [3]int {
	return [3]int{s.Frames, s.Height, s.Width}
}

// Len returns the number of frames.
func (s *Stack) Len() int {
	return s.Frames
}

func (s *Stack) frameSize() int {
	return s.Width * s.Height * s.BytesPerSample
}

// Frame returns frame i as a view into the stack; no pixels are copied.
func (s *Stack) Frame(i int) *Frame {
	n := s.frameSize()
	return &Frame{
		Width:          s.Width,
		Height:         s.Height,
		BytesPerSample: s.BytesPerSample,
		Pix:            s.Pix[i*n : (i+1)*n : (i+1)*n],
	}
}

// At returns the sample of frame i at the given row and column.
func (s *Stack) At(i, row, col int) uint16 {
	k := (i*s.Height+row)*s.Width + col
	if s.BytesPerSample == 2 {
		return xdr.Uint16BE(s.Pix, k)
	}
	return uint16(s.Pix[k])
}

// Series returns the value of one pixel across all frames.
func (s *Stack) Series(row, col int) []uint16 {
	out := make([]uint16, s.Frames)
	for i := range out {
		out[i] = s.At(i, row, col)
	}
	return out
}

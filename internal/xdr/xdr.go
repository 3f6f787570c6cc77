// Package xdr provides the binary decoding and encoding primitives used to
// read PDS movie files.
//
// PDS headers store every multi-byte integer and float in little-endian byte
// order, while 16-bit pixel payloads are big-endian. Both orders are exposed
// here so the asymmetry is handled in exactly one place.
package xdr

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrShortBuffer is returned when a buffer is too small for the
	// requested operation.
	ErrShortBuffer = errors.New("xdr: buffer too short")
)

// ByteOrder is the byte order of PDS header fields.
var ByteOrder = binary.LittleEndian

// SampleOrder is the byte order of 16-bit pixel samples.
var SampleOrder = binary.BigEndian

// StreamReader wraps an io.Reader for little-endian binary reading.
type StreamReader struct {
	r   io.Reader
	buf [8]byte
}

// NewStreamReader creates a StreamReader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// ReadBytesInto fills dst completely.
func (r *StreamReader) ReadBytesInto(dst []byte) error {
	_, err := io.ReadFull(r.r, dst)
	return err
}

// ReadUint32 reads an unsigned 32-bit integer in little-endian order.
func (r *StreamReader) ReadUint32() (uint32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(r.buf[:4]), nil
}

// ReadFloat32 reads a 32-bit IEEE 754 floating-point number in
// little-endian order.
func (r *StreamReader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Uint16BE returns the i-th big-endian 16-bit sample of b.
func Uint16BE(b []byte, i int) uint16 {
	return SampleOrder.Uint16(b[2*i:])
}

// PutUint16BE stores v as the i-th big-endian 16-bit sample of b.
func PutUint16BE(b []byte, i int, v uint16) {
	SampleOrder.PutUint16(b[2*i:], v)
}

// DecodeSamples decodes raw samples of the given width (1 or 2 bytes) into
// dst, which must hold len(src)/bytesPerSample values.
func DecodeSamples(dst []uint16, src []byte, bytesPerSample int) error {
	switch bytesPerSample {
	case 1:
		if len(dst) < len(src) {
			return ErrShortBuffer
		}
		for i, b := range src {
			dst[i] = uint16(b)
		}
	case 2:
		n := len(src) / 2
		if len(dst) < n {
			return ErrShortBuffer
		}
		for i := 0; i < n; i++ {
			dst[i] = SampleOrder.Uint16(src[2*i:])
		}
	default:
		return errors.New("xdr: unsupported sample width")
	}
	return nil
}

// BufferWriter provides a growing buffer for writing binary data.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the written data as a byte slice.
// The returned slice is valid until the next write operation.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// WriteBytes writes a byte slice.
func (w *BufferWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteZeros appends n zero bytes.
func (w *BufferWriter) WriteZeros(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// WriteUint16BE writes an unsigned 16-bit integer in big-endian order.
func (w *BufferWriter) WriteUint16BE(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

// WriteUint32 writes an unsigned 32-bit integer in little-endian order.
func (w *BufferWriter) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteFloat32 writes a 32-bit IEEE 754 floating-point number in
// little-endian order.
func (w *BufferWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// PutFloat32At overwrites four bytes at pos with v in little-endian order,
// growing the buffer with zeros when needed.
func (w *BufferWriter) PutFloat32At(pos int, v float32) {
	if pos+4 > len(w.buf) {
		w.WriteZeros(pos + 4 - len(w.buf))
	}
	ByteOrder.PutUint32(w.buf[pos:], math.Float32bits(v))
}

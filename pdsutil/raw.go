package pdsutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/pdsmovie/go-pds/internal/xdr"
	"github.com/pdsmovie/go-pds/pds"
)

// Raw stack dumps are a zstd stream holding a 24-byte little-endian header
// (magic, frames, width, height, bytes per sample) followed by the pixel
// payloads exactly as stored in the movie.
var rawMagic = [8]byte{'P', 'D', 'S', 'R', 'A', 'W', '0', '1'}

const rawHeaderSize = 24

// ErrBadRawStream is returned by ReadRaw for streams it did not write.
var ErrBadRawStream = errors.New("pdsutil: not a raw stack stream")

func rawHeader(frames, width, height, bps int) []byte {
	w := xdr.NewBufferWriter(rawHeaderSize)
	w.WriteBytes(rawMagic[:])
	w.WriteUint32(uint32(frames))
	w.WriteUint32(uint32(width))
	w.WriteUint32(uint32(height))
	w.WriteUint32(uint32(bps))
	return w.Bytes()
}

// WriteRaw writes a stack as a zstd-compressed raw dump.
func WriteRaw(w io.Writer, s *pds.Stack) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(rawHeader(s.Frames, s.Width, s.Height, s.BytesPerSample)); err != nil {
		enc.Close()
		return err
	}
	if _, err := enc.Write(s.Pix); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// exportRaw streams frames [first, last] of m into a raw dump at path
// without holding the whole range in memory.
func exportRaw(m *pds.Movie, path string, first, last int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	enc, err := zstd.NewWriter(bw)
	if err != nil {
		out.Close()
		return err
	}

	fail := func(err error) error {
		enc.Close()
		out.Close()
		return err
	}

	if _, err := enc.Write(rawHeader(last-first+1, m.Width(), m.Height(), m.BytesPerSample())); err != nil {
		return fail(err)
	}
	f := &pds.Frame{}
	for i := first; i <= last; i++ {
		if err := m.ReadFrameInto(i, f); err != nil {
			return fail(err)
		}
		if _, err := enc.Write(f.Pix); err != nil {
			return fail(err)
		}
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// rawPayloadSize multiplies the header fields, reporting false when the
// product does not fit in an int.
func rawPayloadSize(vals [4]int64) (int64, bool) {
	size := int64(1)
	for _, v := range vals {
		if v == 0 {
			return 0, true
		}
		if size > math.MaxInt/v {
			return 0, false
		}
		size *= v
	}
	return size, true
}

// ReadRaw decodes a dump written by WriteRaw or a raw export.
func ReadRaw(r io.Reader) (*pds.Stack, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	hdr := make([]byte, rawHeaderSize)
	if _, err := io.ReadFull(dec, hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRawStream, err)
	}
	if [8]byte(hdr[:8]) != rawMagic {
		return nil, ErrBadRawStream
	}

	var vals [4]int64
	for i := range vals {
		vals[i] = int64(xdr.ByteOrder.Uint32(hdr[8+4*i:]))
	}
	if vals[0] > 0 && vals[3] != 1 && vals[3] != 2 {
		return nil, fmt.Errorf("%w: %d bytes per sample", ErrBadRawStream, vals[3])
	}
	size, ok := rawPayloadSize(vals)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%dx%dx%d exceeds addressable size", ErrBadRawStream, vals[0], vals[1], vals[2], vals[3])
	}
	s := &pds.Stack{Frames: int(vals[0]), Width: int(vals[1]), Height: int(vals[2]), BytesPerSample: int(vals[3])}

	// The buffer grows with the decoded data, so a header claiming more
	// than the stream holds fails without allocating the claimed size.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, dec, size); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRawStream, err)
	}
	s.Pix = buf.Bytes()
	return s, nil
}

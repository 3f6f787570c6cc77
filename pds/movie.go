package pds

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdsmovie/go-pds/internal/xdr"
)

// Movie is an open PDS movie.
//
// All reads go through a single cursor, so a Movie must not be used from
// multiple goroutines without external synchronization.
type Movie struct {
	path   string
	size   int64
	layout Layout

	r      io.ReaderAt
	cur    *io.SectionReader
	closer io.Closer
	closed bool
}

// Open parses a PDS movie from a random-access reader of the given size.
// The reader is not closed by Movie.Close.
func Open(r io.ReaderAt, size int64) (*Movie, error) {
	if size < FileHeaderSize {
		return nil, &FormatError{Reason: ErrTooSmall, Detail: fmt.Sprintf("%d bytes", size)}
	}
	m := &Movie{
		size: size,
		r:    r,
		cur:  io.NewSectionReader(r, 0, size),
	}
	if err := m.readHeader(); err != nil {
		return nil, err
	}
	return m, nil
}

// OpenFile opens a PDS movie from the filesystem.
// The returned Movie must be closed to release the file handle.
func OpenFile(path string) (*Movie, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Op: "stat", Offset: -1, Err: err}
	}
	if info.Size() < FileHeaderSize {
		return nil, &FormatError{Path: path, Reason: ErrTooSmall, Detail: fmt.Sprintf("%d bytes", info.Size())}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Offset: -1, Err: err}
	}
	m, err := Open(f, info.Size())
	if err != nil {
		f.Close()
		return nil, withPath(err, path)
	}
	m.path = path
	m.closer = f
	return m, nil
}

// OpenFileMmap opens a PDS movie using a read-only memory mapping.
// Reads behave exactly as with OpenFile; the mapping is shared, so
// in-place changes to the file remain visible to later reads.
// The returned Movie must be closed to release the mapping.
func OpenFileMmap(path string) (*Movie, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Op: "stat", Offset: -1, Err: err}
	}
	if info.Size() < FileHeaderSize {
		return nil, &FormatError{Path: path, Reason: ErrTooSmall, Detail: fmt.Sprintf("%d bytes", info.Size())}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Offset: -1, Err: err}
	}
	mmap, err := newMmapReader(f)
	if err != nil {
		f.Close()
		return nil, &IOError{Op: "mmap", Offset: -1, Err: err}
	}

	m, err := Open(mmap, mmap.Size())
	if err != nil {
		mmap.Close()
		return nil, withPath(err, path)
	}
	m.path = path
	m.closer = mmap
	return m, nil
}

func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Path = path
	}
	return err
}

// readHeader validates the magic, reads the layout fields and checks the
// total size.
func (m *Movie) readHeader() error {
	sr := xdr.NewStreamReader(m.cur)

	var magic [4]byte
	if err := sr.ReadBytesInto(magic[:]); err != nil {
		return &IOError{Op: "read magic", Offset: 0, Err: err}
	}
	if magic != Magic {
		return &FormatError{Reason: ErrBadMagic, Detail: fmt.Sprintf("% x", magic[:])}
	}

	n, err := sr.ReadUint32()
	if err != nil {
		return &IOError{Op: "read frame count", Offset: offsetFrameCount, Err: err}
	}
	l := Layout{Frames: n, BytesPerSample: 1}

	// The layout fields sit inside the first frame header; an empty movie
	// has none and reads them as zero.
	if n > 0 || m.size >= layoutFieldsEnd {
		w, err := m.readFloat(sr, "read width", offsetWidth)
		if err != nil {
			return err
		}
		h, err := sr.ReadFloat32()
		if err != nil {
			return &IOError{Op: "read height", Offset: offsetHeight, Err: err}
		}
		code, err := m.readFloat(sr, "read pixel format", offsetPixelFormat)
		if err != nil {
			return err
		}

		format, ok := pixelFormatFromCode(code)
		if !ok {
			return &FormatError{Reason: ErrUnknownPixelFormat, Detail: fmt.Sprintf("code %v", code)}
		}
		l.BytesPerSample = format.BytesPerSample()

		var okW, okH bool
		l.Width, okW = dimensionFromFloat(w)
		l.Height, okH = dimensionFromFloat(h)
		if !okW || !okH {
			return &FormatError{Reason: ErrBadDimensions, Detail: fmt.Sprintf("%vx%v", w, h)}
		}
	}

	if want := l.FileSize(); want != m.size {
		return &FormatError{
			Reason: ErrSizeMismatch,
			Detail: fmt.Sprintf("%d bytes, layout %dx%dx%d with %d frames needs %d", m.size, l.Width, l.Height, l.BytesPerSample, l.Frames, want),
		}
	}

	m.layout = l
	return nil
}

// readFloat seeks to an absolute offset and reads one little-endian float.
func (m *Movie) readFloat(sr *xdr.StreamReader, op string, off int64) (float32, error) {
	if _, err := m.cur.Seek(off, io.SeekStart); err != nil {
		return 0, &IOError{Op: "seek", Offset: off, Err: err}
	}
	v, err := sr.ReadFloat32()
	if err != nil {
		return 0, &IOError{Op: op, Offset: off, Err: err}
	}
	return v, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (m *Movie) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}

// Path returns the path the movie was opened from, if any.
func (m *Movie) Path() string { return m.path }

// Size returns the file size in bytes.
func (m *Movie) Size() int64 { return m.size }

// Layout returns the movie geometry.
func (m *Movie) Layout() Layout { return m.layout }

// FrameCount returns the number of frames.
func (m *Movie) FrameCount() int { return int(m.layout.Frames) }

// Width returns the frame width in pixels.
func (m *Movie) Width() int { return m.layout.Width }

// Height returns the frame height in pixels.
func (m *Movie) Height() int { return m.layout.Height }

// BytesPerSample returns 1 for 8-bit movies and 2 for 16-bit movies.
func (m *Movie) BytesPerSample() int { return m.layout.BytesPerSample }

// PixelFormat returns the pixel format of the movie.
func (m *Movie) PixelFormat() PixelFormat { return m.layout.PixelFormat() }

// FrameSize returns the size in bytes of one frame's pixel payload.
func (m *Movie) FrameSize() int { return m.layout.FrameSize() }

func (m *Movie) checkOpen() error {
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Movie) checkIndex(i int) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if i < 0 || int64(i) >= int64(m.layout.Frames) {
		return &RangeError{Index: i, Count: m.layout.Frames}
	}
	return nil
}

// seek positions the cursor at an absolute offset.
func (m *Movie) seek(off int64) error {
	if _, err := m.cur.Seek(off, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Offset: off, Err: err}
	}
	return nil
}

// skip advances the cursor by n bytes.
func (m *Movie) skip(n int64) error {
	pos, err := m.cur.Seek(n, io.SeekCurrent)
	if err != nil {
		return &IOError{Op: "skip", Offset: pos, Err: err}
	}
	return nil
}

// pos returns the current cursor offset.
func (m *Movie) pos() int64 {
	p, _ := m.cur.Seek(0, io.SeekCurrent)
	return p
}

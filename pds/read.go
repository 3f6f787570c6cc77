package pds

import (
	"io"

	"github.com/pdsmovie/go-pds/internal/xdr"
)

// Frame reads the pixel plane of frame i.
//
// Every call seeks independently and re-reads the file.
func (m *Movie) Frame(i int) (*Frame, error) {
	if err := m.checkIndex(i); err != nil {
		return nil, err
	}
	f := NewFrame(m.layout.Width, m.layout.Height, m.layout.BytesPerSample)
	if err := m.readFrame(i, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFrameInto reads frame i into dst, reallocating dst.Pix only when it
// is too small.
func (m *Movie) ReadFrameInto(i int, dst *Frame) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.shape(dst)
	return m.readFrame(i, dst)
}

func (m *Movie) shape(dst *Frame) {
	n := m.layout.FrameSize()
	dst.Width = m.layout.Width
	dst.Height = m.layout.Height
	dst.BytesPerSample = m.layout.BytesPerSample
	if cap(dst.Pix) < n {
		dst.Pix = make([]byte, n)
	}
	dst.Pix = dst.Pix[:n]
}

func (m *Movie) readFrame(i int, dst *Frame) error {
	off := m.layout.PixelOffset(i)
	if err := m.seek(off); err != nil {
		return err
	}
	if _, err := io.ReadFull(m.cur, dst.Pix); err != nil {
		return &IOError{Op: "read frame", Offset: off, Err: err}
	}
	return nil
}

// Data reads every frame of the movie in one sequential pass.
//
// A movie without frames yields an empty stack of shape (0, 0, 0).
func (m *Movie) Data() (*Stack, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	if m.layout.Frames == 0 {
		return &Stack{}, nil
	}

	n := int(m.layout.Frames)
	size := m.layout.FrameSize()
	s := &Stack{
		Frames:         n,
		Width:          m.layout.Width,
		Height:         m.layout.Height,
		BytesPerSample: m.layout.BytesPerSample,
		Pix:            make([]byte, n*size),
	}

	if err := m.seek(FileHeaderSize); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := m.skip(FrameHeaderSize); err != nil {
			return nil, err
		}
		off := m.pos()
		if _, err := io.ReadFull(m.cur, s.Pix[i*size:(i+1)*size]); err != nil {
			return nil, &IOError{Op: "read frame", Offset: off, Err: err}
		}
	}
	return s, nil
}

// Each calls fn for every frame in order during one sequential pass.
// The frame passed to fn is reused between calls; copy it to retain it.
// Iteration stops at the first error returned by fn.
func (m *Movie) Each(fn func(i int, f *Frame) error) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if m.layout.Frames == 0 {
		return nil
	}

	f := &Frame{}
	m.shape(f)
	if err := m.seek(FileHeaderSize); err != nil {
		return err
	}
	for i := 0; i < int(m.layout.Frames); i++ {
		if err := m.skip(FrameHeaderSize); err != nil {
			return err
		}
		off := m.pos()
		if _, err := io.ReadFull(m.cur, f.Pix); err != nil {
			return &IOError{Op: "read frame", Offset: off, Err: err}
		}
		if err := fn(i, f); err != nil {
			return err
		}
		// fn may use the movie and move the cursor.
		if err := m.seek(m.layout.FrameOffset(i + 1)); err != nil {
			return err
		}
	}
	return nil
}

// Timestamp reads the timestamp of frame i, in seconds.
func (m *Movie) Timestamp(i int) (float32, error) {
	if err := m.checkIndex(i); err != nil {
		return 0, err
	}
	off := m.layout.TimestampOffset(i)
	if err := m.seek(off); err != nil {
		return 0, err
	}
	v, err := xdr.NewStreamReader(m.cur).ReadFloat32()
	if err != nil {
		return 0, &IOError{Op: "read timestamp", Offset: off, Err: err}
	}
	return v, nil
}

// Timestamps reads the timestamps of all frames in one sequential pass.
func (m *Movie) Timestamps() ([]float32, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}

	n := int(m.layout.Frames)
	ts := make([]float32, n)
	if n == 0 {
		return ts, nil
	}

	if err := m.seek(FileHeaderSize + timestampOffset); err != nil {
		return nil, err
	}
	sr := xdr.NewStreamReader(m.cur)
	gap := m.layout.RecordSize() - 4
	for i := 0; i < n; i++ {
		off := m.pos()
		v, err := sr.ReadFloat32()
		if err != nil {
			return nil, &IOError{Op: "read timestamp", Offset: off, Err: err}
		}
		ts[i] = v
		if err := m.skip(gap); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

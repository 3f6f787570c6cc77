// Package pdstest builds synthetic PDS movies for tests.
package pdstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdsmovie/go-pds/internal/xdr"
)

// Movie describes a synthetic movie. Pixels holds one slice of
// Width*Height samples per frame; missing frames are zero-filled.
type Movie struct {
	Width          int
	Height         int
	BytesPerSample int
	Frames         int
	Timestamps     []float32
	Pixels         [][]uint16

	// Overrides for building malformed files.
	Magic           *[4]byte
	FrameCount      *uint32
	PixelFormatCode *float32
	WidthField      *float32
	HeightField     *float32
	Trim            int
	Extra           int
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 { return &v }

// Uint32 returns a pointer to v.
func Uint32(v uint32) *uint32 { return &v }

const (
	frameHeaderSize   = 584
	offsetWidth       = 0x1b4
	offsetHeight      = 0x1b8
	offsetPixelFormat = 0x1c8
)

// Bytes encodes the movie.
func (m Movie) Bytes() []byte {
	bps := m.BytesPerSample
	if bps == 0 {
		bps = 1
	}
	frameSize := m.Width * m.Height * bps
	w := xdr.NewBufferWriter(8 + (frameHeaderSize+frameSize)*m.Frames)

	magic := [4]byte{4, 4, 4, 4}
	if m.Magic != nil {
		magic = *m.Magic
	}
	w.WriteBytes(magic[:])
	count := uint32(m.Frames)
	if m.FrameCount != nil {
		count = *m.FrameCount
	}
	w.WriteUint32(count)

	for i := 0; i < m.Frames; i++ {
		start := w.Len()
		w.WriteZeros(frameHeaderSize)
		if i < len(m.Timestamps) {
			w.PutFloat32At(start+4, m.Timestamps[i])
		}
		var px []uint16
		if i < len(m.Pixels) {
			px = m.Pixels[i]
		}
		for k := 0; k < m.Width*m.Height; k++ {
			var v uint16
			if k < len(px) {
				v = px[k]
			}
			if bps == 2 {
				w.WriteUint16BE(v)
			} else {
				w.WriteBytes([]byte{byte(v)})
			}
		}
	}

	if m.Frames > 0 || m.WidthField != nil || m.HeightField != nil || m.PixelFormatCode != nil {
		width := float32(m.Width)
		if m.WidthField != nil {
			width = *m.WidthField
		}
		height := float32(m.Height)
		if m.HeightField != nil {
			height = *m.HeightField
		}
		code := float32(bps - 1)
		if m.PixelFormatCode != nil {
			code = *m.PixelFormatCode
		}
		w.PutFloat32At(offsetWidth, width)
		w.PutFloat32At(offsetHeight, height)
		w.PutFloat32At(offsetPixelFormat, code)
	}

	w.WriteZeros(m.Extra)
	b := w.Bytes()
	if m.Trim > 0 {
		b = b[:len(b)-m.Trim]
	}
	return b
}

// WriteFile writes the movie into the test's temporary directory and
// returns its path.
func (m Movie) WriteFile(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, m.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Ramp returns frames whose sample k of frame i is (i*step + k) masked to
// the sample width.
func Ramp(frames, width, height, bytesPerSample, step int) [][]uint16 {
	mask := 0xFF
	if bytesPerSample == 2 {
		mask = 0xFFFF
	}
	out := make([][]uint16, frames)
	for i := range out {
		out[i] = make([]uint16, width*height)
		for k := range out[i] {
			out[i][k] = uint16((i*step + k) & mask)
		}
	}
	return out
}

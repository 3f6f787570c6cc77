package xdr

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestStreamReaderLittleEndian(t *testing.T) {
	data := []byte{
		0x78, 0x56, 0x34, 0x12, // uint32: 0x12345678
		0x00, 0x00, 0x80, 0x3F, // float32: 1.0
	}
	r := NewStreamReader(bytes.NewReader(data))

	u32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32() error = %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("ReadUint32() = 0x%08X, want 0x12345678", u32)
	}

	f, err := r.ReadFloat32()
	if err != nil {
		t.Fatalf("ReadFloat32() error = %v", err)
	}
	if f != 1.0 {
		t.Errorf("ReadFloat32() = %v, want 1.0", f)
	}

	if _, err := r.ReadUint32(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadUint32() at end error = %v, want io.EOF", err)
	}
}

func TestStreamReaderShortRead(t *testing.T) {
	r := NewStreamReader(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := r.ReadFloat32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFloat32() error = %v, want io.ErrUnexpectedEOF", err)
	}

	r = NewStreamReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	dst := make([]byte, 4)
	if err := r.ReadBytesInto(dst); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadBytesInto() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSampleOrderIsBigEndian(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	if got := Uint16BE(b, 0); got != 0x0102 {
		t.Errorf("Uint16BE(0) = 0x%04X, want 0x0102", got)
	}
	if got := Uint16BE(b, 1); got != 0x0304 {
		t.Errorf("Uint16BE(1) = 0x%04X, want 0x0304", got)
	}

	PutUint16BE(b, 1, 0xBEEF)
	if b[2] != 0xBE || b[3] != 0xEF {
		t.Errorf("PutUint16BE wrote % X, want BE EF", b[2:])
	}
}

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		bps  int
		want []uint16
	}{
		{"8bit", []byte{0, 1, 254, 255}, 1, []uint16{0, 1, 254, 255}},
		{"16bit", []byte{0x01, 0x02, 0xFF, 0x00}, 2, []uint16{0x0102, 0xFF00}},
		{"empty", nil, 2, []uint16{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]uint16, len(tt.want))
			if err := DecodeSamples(dst, tt.src, tt.bps); err != nil {
				t.Fatalf("DecodeSamples() error = %v", err)
			}
			for i := range tt.want {
				if dst[i] != tt.want[i] {
					t.Errorf("dst[%d] = %d, want %d", i, dst[i], tt.want[i])
				}
			}
		})
	}

	if err := DecodeSamples(make([]uint16, 1), []byte{1, 2}, 1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("DecodeSamples() short dst error = %v, want ErrShortBuffer", err)
	}
	if err := DecodeSamples(make([]uint16, 4), []byte{1, 2}, 3); err == nil {
		t.Error("DecodeSamples() with 3-byte samples should fail")
	}
}

func TestBufferWriter(t *testing.T) {
	w := NewBufferWriter(0)
	w.WriteBytes([]byte{4, 4, 4, 4})
	w.WriteUint32(2)
	w.WriteFloat32(1.5)
	w.WriteUint16BE(0x0102)
	w.WriteZeros(2)

	want := []byte{
		4, 4, 4, 4,
		2, 0, 0, 0,
		0x00, 0x00, 0xC0, 0x3F,
		0x01, 0x02,
		0, 0,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = % X, want % X", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", w.Len(), len(want))
	}
}

func TestBufferWriterPutFloat32At(t *testing.T) {
	w := NewBufferWriter(0)
	w.PutFloat32At(8, float32(math.Pi))
	if w.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", w.Len())
	}

	r := NewStreamReader(bytes.NewReader(w.Bytes()[8:]))
	f, err := r.ReadFloat32()
	if err != nil {
		t.Fatalf("ReadFloat32() error = %v", err)
	}
	if f != float32(math.Pi) {
		t.Errorf("ReadFloat32() = %v, want %v", f, float32(math.Pi))
	}

	w.PutFloat32At(0, 2)
	if w.Len() != 12 {
		t.Errorf("Len() after overwrite = %d, want 12", w.Len())
	}
}

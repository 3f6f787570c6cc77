package pds

import (
	"image"
	"image/color"
	"testing"
)

func TestFrameSetAt(t *testing.T) {
	for _, bps := range []int{1, 2} {
		f := NewFrame(3, 2, bps)
		f.Set(1, 2, 0x1234)
		want := uint16(0x1234)
		if bps == 1 {
			want = 0x34
		}
		if got := f.At(1, 2); got != want {
			t.Errorf("bps=%d: At(1, 2) = 0x%X, want 0x%X", bps, got, want)
		}
		if got := f.Row(1); got[2] != want || got[0] != 0 {
			t.Errorf("bps=%d: Row(1) = %v", bps, got)
		}
	}
}

func TestFrameImage(t *testing.T) {
	t.Run("Gray", func(t *testing.T) {
		f := NewFrame(2, 2, 1)
		f.Set(1, 0, 200)
		img, ok := f.Image().(*image.Gray)
		if !ok {
			t.Fatalf("Image() type = %T, want *image.Gray", f.Image())
		}
		if img.Bounds() != image.Rect(0, 0, 2, 2) {
			t.Errorf("Bounds() = %v", img.Bounds())
		}
		if img.GrayAt(0, 1).Y != 200 {
			t.Errorf("GrayAt(0, 1) = %d, want 200", img.GrayAt(0, 1).Y)
		}
	})

	t.Run("Gray16SharesPix", func(t *testing.T) {
		f := NewFrame(3, 1, 2)
		img, ok := f.Image().(*image.Gray16)
		if !ok {
			t.Fatalf("Image() type = %T, want *image.Gray16", f.Image())
		}
		f.Set(0, 2, 0xABCD)
		if got := img.Gray16At(2, 0); got != (color.Gray16{Y: 0xABCD}) {
			t.Errorf("Gray16At(2, 0) = %v, want 0xABCD", got)
		}
	})
}

func TestFrameEqual(t *testing.T) {
	a := NewFrame(2, 2, 2)
	b := NewFrame(2, 2, 2)
	if !a.Equal(b) {
		t.Error("zero frames should be equal")
	}
	b.Set(0, 0, 1)
	if a.Equal(b) {
		t.Error("frames with different samples should differ")
	}
	if a.Equal(NewFrame(4, 1, 2)) {
		t.Error("frames with different shapes should differ")
	}
	var nilFrame *Frame
	if a.Equal(nilFrame) || !nilFrame.Equal(nil) {
		t.Error("nil comparison mismatch")
	}
}

func TestStackViews(t *testing.T) {
	s := &Stack{Frames: 3, Width: 2, Height: 2, BytesPerSample: 2, Pix: make([]byte, 3*2*2*2)}
	for i := 0; i < 3; i++ {
		s.Frame(i).Set(1, 1, uint16(100*(i+1)))
	}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	series := s.Series(1, 1)
	for i, want := range []uint16{100, 200, 300} {
		if series[i] != want {
			t.Errorf("Series(1, 1)[%d] = %d, want %d", i, series[i], want)
		}
		if s.At(i, 1, 1) != want {
			t.Errorf("At(%d, 1, 1) = %d, want %d", i, s.At(i, 1, 1), want)
		}
	}

	// Appending to a view must not spill into the next frame.
	v := s.Frame(0)
	v.Pix = append(v.Pix, 0xFF)
	if s.At(1, 0, 0) != 0 {
		t.Errorf("append to frame view overwrote frame 1: %d", s.At(1, 0, 0))
	}
}

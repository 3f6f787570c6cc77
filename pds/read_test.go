package pds

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/pdsmovie/go-pds/internal/pdstest"
)

func openFixture(t *testing.T, fixture pdstest.Movie) *Movie {
	t.Helper()
	m, err := OpenFile(fixture.WriteFile(t, "movie.pds"))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestTwoFrameMono8Scenario(t *testing.T) {
	frame0 := []uint16{
		0, 1, 2, 3,
		10, 11, 12, 13,
		20, 21, 22, 23,
	}
	frame1 := []uint16{
		255, 254, 253, 252,
		128, 127, 126, 125,
		7, 6, 5, 4,
	}
	m := openFixture(t, pdstest.Movie{
		Width: 4, Height: 3, BytesPerSample: 1, Frames: 2,
		Timestamps: []float32{0.125, 0.375},
		Pixels:     [][]uint16{frame0, frame1},
	})

	s, err := m.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if s.Shape() != [3]int{2, 3, 4} {
		t.Fatalf("Data().Shape() = %v, want [2 3 4]", s.Shape())
	}

	for i, want := range [][]uint16{frame0, frame1} {
		f, err := m.Frame(i)
		if err != nil {
			t.Fatalf("Frame(%d) error = %v", i, err)
		}
		if f.Shape() != [2]int{3, 4} {
			t.Errorf("Frame(%d).Shape() = %v, want [3 4]", i, f.Shape())
		}
		got := f.Values()
		for k := range want {
			if got[k] != want[k] {
				t.Errorf("Frame(%d) sample %d = %d, want %d", i, k, got[k], want[k])
			}
		}
		if f.At(2, 1) != want[2*4+1] {
			t.Errorf("Frame(%d).At(2, 1) = %d, want %d", i, f.At(2, 1), want[9])
		}
	}

	ts, err := m.Timestamps()
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if len(ts) != 2 || ts[0] != 0.125 || ts[1] != 0.375 {
		t.Errorf("Timestamps() = %v, want [0.125 0.375]", ts)
	}
}

func TestFrameMatchesData(t *testing.T) {
	for _, bps := range []int{1, 2} {
		fixture := pdstest.Movie{
			Width: 5, Height: 4, BytesPerSample: bps, Frames: 6,
			Pixels:     pdstest.Ramp(6, 5, 4, bps, 977),
			Timestamps: []float32{0, 0.01, 0.02, 0.035, 0.04, 0.05},
		}
		m := openFixture(t, fixture)

		s, err := m.Data()
		if err != nil {
			t.Fatalf("Data() error = %v", err)
		}
		ts, err := m.Timestamps()
		if err != nil {
			t.Fatalf("Timestamps() error = %v", err)
		}

		// Read in reverse so each single-frame read really seeks.
		for i := m.FrameCount() - 1; i >= 0; i-- {
			f, err := m.Frame(i)
			if err != nil {
				t.Fatalf("Frame(%d) error = %v", i, err)
			}
			if !f.Equal(s.Frame(i)) {
				t.Errorf("bps=%d: Frame(%d) differs from Data() row %d", bps, i, i)
			}
			v, err := m.Timestamp(i)
			if err != nil {
				t.Fatalf("Timestamp(%d) error = %v", i, err)
			}
			if v != ts[i] {
				t.Errorf("bps=%d: Timestamp(%d) = %v, Timestamps()[%d] = %v", bps, i, v, i, ts[i])
			}
			if v != fixture.Timestamps[i] {
				t.Errorf("bps=%d: Timestamp(%d) = %v, want %v", bps, i, v, fixture.Timestamps[i])
			}
		}
	}
}

func TestMono16BigEndianRoundTrip(t *testing.T) {
	want := []uint16{0x0102, 0x0304, 0x0506, 0x0708, 0xFFFE, 0x8000}
	m := openFixture(t, pdstest.Movie{
		Width: 3, Height: 2, BytesPerSample: 2, Frames: 1,
		Pixels: [][]uint16{want},
	})

	f, err := m.Frame(0)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if f.Pix[0] != 0x01 || f.Pix[1] != 0x02 {
		t.Errorf("raw bytes = % X, want 01 02 first", f.Pix[:2])
	}
	got := f.Values()
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("sample %d = 0x%04X, want 0x%04X", k, got[k], want[k])
		}
	}

	s, err := m.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if s.At(0, 1, 2) != 0x8000 {
		t.Errorf("Data().At(0, 1, 2) = 0x%04X, want 0x8000", s.At(0, 1, 2))
	}
}

func TestEmptyMovieAccessors(t *testing.T) {
	m := openFixture(t, pdstest.Movie{})

	s, err := m.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if s.Shape() != [3]int{0, 0, 0} {
		t.Errorf("Data().Shape() = %v, want [0 0 0]", s.Shape())
	}

	ts, err := m.Timestamps()
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if len(ts) != 0 {
		t.Errorf("Timestamps() = %v, want empty", ts)
	}

	if _, err := m.Frame(0); !errors.Is(err, ErrFrameOutOfRange) {
		t.Errorf("Frame(0) error = %v, want ErrFrameOutOfRange", err)
	}

	calls := 0
	if err := m.Each(func(int, *Frame) error { calls++; return nil }); err != nil || calls != 0 {
		t.Errorf("Each() = %v with %d calls, want nil with 0", err, calls)
	}
}

func TestFrameIndexOutOfRange(t *testing.T) {
	m := openFixture(t, pdstest.Movie{Width: 2, Height: 2, BytesPerSample: 1, Frames: 3})

	for _, i := range []int{-1, 3, 100} {
		_, err := m.Frame(i)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Errorf("Frame(%d) error = %v, want *RangeError", i, err)
			continue
		}
		if re.Index != i || re.Count != 3 {
			t.Errorf("RangeError = %+v, want index %d count 3", re, i)
		}
		if _, err := m.Timestamp(i); !errors.Is(err, ErrFrameOutOfRange) {
			t.Errorf("Timestamp(%d) error = %v, want ErrFrameOutOfRange", i, err)
		}
	}
}

func TestReadFrameInto(t *testing.T) {
	fixture := pdstest.Movie{
		Width: 3, Height: 3, BytesPerSample: 2, Frames: 3,
		Pixels: pdstest.Ramp(3, 3, 3, 2, 1000),
	}
	m := openFixture(t, fixture)

	dst := &Frame{}
	for i := 0; i < 3; i++ {
		if err := m.ReadFrameInto(i, dst); err != nil {
			t.Fatalf("ReadFrameInto(%d) error = %v", i, err)
		}
		if dst.Width != 3 || dst.Height != 3 || dst.BytesPerSample != 2 {
			t.Fatalf("ReadFrameInto(%d) geometry = %dx%dx%d", i, dst.Width, dst.Height, dst.BytesPerSample)
		}
		if dst.At(0, 0) != fixture.Pixels[i][0] || dst.At(2, 2) != fixture.Pixels[i][8] {
			t.Errorf("ReadFrameInto(%d) corners = %d,%d, want %d,%d",
				i, dst.At(0, 0), dst.At(2, 2), fixture.Pixels[i][0], fixture.Pixels[i][8])
		}
	}
}

func TestEach(t *testing.T) {
	fixture := pdstest.Movie{
		Width: 4, Height: 2, BytesPerSample: 1, Frames: 4,
		Pixels:     pdstest.Ramp(4, 4, 2, 1, 10),
		Timestamps: []float32{1, 2, 3, 4},
	}
	m := openFixture(t, fixture)

	var seen []int
	err := m.Each(func(i int, f *Frame) error {
		seen = append(seen, i)
		if f.At(0, 0) != fixture.Pixels[i][0] {
			t.Errorf("frame %d first sample = %d, want %d", i, f.At(0, 0), fixture.Pixels[i][0])
		}
		// Moving the cursor inside the callback must not break the pass.
		if _, err := m.Timestamp(0); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}
	if len(seen) != 4 {
		t.Errorf("Each() visited %v, want 4 frames", seen)
	}

	stop := errors.New("stop")
	calls := 0
	err = m.Each(func(int, *Frame) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Each() = %v after %d calls, want stop after 1", err, calls)
	}
}

func TestReadsReflectFileChanges(t *testing.T) {
	fixture := pdstest.Movie{Width: 2, Height: 1, BytesPerSample: 1, Frames: 1, Pixels: [][]uint16{{1, 2}}}
	path := fixture.WriteFile(t, "movie.pds")
	m, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer m.Close()

	fixture.Pixels = [][]uint16{{7, 8}}
	if err := os.WriteFile(path, fixture.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := m.Frame(0)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if f.At(0, 0) != 7 || f.At(0, 1) != 8 {
		t.Errorf("Frame() = %v, want [7 8] after rewrite", f.Values())
	}
}

func TestTruncatedAfterOpen(t *testing.T) {
	fixture := pdstest.Movie{Width: 8, Height: 8, BytesPerSample: 2, Frames: 3}
	path := fixture.WriteFile(t, "movie.pds")
	m, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer m.Close()

	if err := os.Truncate(path, 700); err != nil {
		t.Fatal(err)
	}

	_, err = m.Frame(2)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Frame(2) error = %v (%T), want *IOError", err, err)
	}
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Frame(2) error = %v, want EOF", err)
	}

	if _, err := m.Data(); !errors.As(err, &ioErr) {
		t.Errorf("Data() error = %v, want *IOError", err)
	}
	if _, err := m.Timestamps(); !errors.As(err, &ioErr) {
		t.Errorf("Timestamps() error = %v, want *IOError", err)
	}
}

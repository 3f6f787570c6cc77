package pdsutil

import (
	"github.com/pdsmovie/go-pds/pds"
)

// Stats summarises the samples of one frame.
type Stats struct {
	Min  uint16  `json:"min" yaml:"min"`
	Max  uint16  `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
}

// FrameStats computes the minimum, maximum and mean sample of a frame.
// An empty frame yields zero Stats.
func FrameStats(f *pds.Frame) Stats {
	n := f.Width * f.Height
	if n == 0 {
		return Stats{}
	}
	st := Stats{Min: 0xFFFF}
	var sum uint64
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			v := f.At(row, col)
			if v < st.Min {
				st.Min = v
			}
			if v > st.Max {
				st.Max = v
			}
			sum += uint64(v)
		}
	}
	st.Mean = float64(sum) / float64(n)
	return st
}

// MovieStats computes FrameStats for every frame in one sequential pass.
func MovieStats(m *pds.Movie) ([]Stats, error) {
	out := make([]Stats, m.FrameCount())
	err := m.Each(func(i int, f *pds.Frame) error {
		out[i] = FrameStats(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Package pdsutil provides PDS-specific utility functions.
//
// This package offers higher-level operations on PDS movies: file
// summaries, validation, pixel statistics, timestamp tables and frame
// export to common image formats.
//
// Example usage:
//
//	info, _ := pdsutil.GetFileInfo("movie.pds")
//	fmt.Printf("%d frames of %dx%d at %.1f fps\n", info.Frames, info.Width, info.Height, info.FrameRate)
//
//	m, _ := pds.OpenFile("movie.pds")
//	files, _ := pdsutil.ExportFrames(m, pdsutil.ExportOptions{Dir: "out", Format: pdsutil.FormatTIFF})
package pdsutil

import (
	"os"

	"github.com/pdsmovie/go-pds/pds"
)

// FileInfo provides a summary of a PDS movie.
type FileInfo struct {
	Path           string  `json:"path" yaml:"path"`
	FileSize       int64   `json:"file_size" yaml:"file_size"`
	Frames         int     `json:"frames" yaml:"frames"`
	Width          int     `json:"width" yaml:"width"`
	Height         int     `json:"height" yaml:"height"`
	BytesPerSample int     `json:"bytes_per_sample" yaml:"bytes_per_sample"`
	PixelFormat    string  `json:"pixel_format" yaml:"pixel_format"`
	FirstTimestamp float64 `json:"first_timestamp" yaml:"first_timestamp"`
	LastTimestamp  float64 `json:"last_timestamp" yaml:"last_timestamp"`
	Duration       float64 `json:"duration" yaml:"duration"`
	FrameInterval  float64 `json:"frame_interval" yaml:"frame_interval"`
	FrameRate      float64 `json:"frame_rate" yaml:"frame_rate"`
}

// GetFileInfo returns summary information about a PDS movie.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	m, err := pds.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	info := Describe(m)
	info.FileSize = stat.Size()

	ts, err := m.Timestamps()
	if err != nil {
		return nil, err
	}
	fillTiming(info, ts)
	return info, nil
}

// Describe returns the layout part of FileInfo for an open movie.
func Describe(m *pds.Movie) *FileInfo {
	return &FileInfo{
		Path:           m.Path(),
		FileSize:       m.Size(),
		Frames:         m.FrameCount(),
		Width:          m.Width(),
		Height:         m.Height(),
		BytesPerSample: m.BytesPerSample(),
		PixelFormat:    m.PixelFormat().String(),
	}
}

func fillTiming(info *FileInfo, ts []float32) {
	if len(ts) == 0 {
		return
	}
	info.FirstTimestamp = float64(ts[0])
	info.LastTimestamp = float64(ts[len(ts)-1])
	info.Duration = info.LastTimestamp - info.FirstTimestamp
	if len(ts) > 1 {
		info.FrameInterval = info.Duration / float64(len(ts)-1)
		if info.FrameInterval > 0 {
			info.FrameRate = 1 / info.FrameInterval
		}
	}
}

package pdsutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-jpeg2000"
	"golang.org/x/image/tiff"

	"github.com/pdsmovie/go-pds/pds"
)

// Format selects the file format of exported frames.
type Format string

// Supported export formats.
const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatJ2K  Format = "j2k"
	FormatRaw  Format = "raw"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("pdsutil: unknown export format")

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatTIFF, FormatJ2K, FormatRaw:
		return f, nil
	case "tif":
		return FormatTIFF, nil
	case "jp2", "jpeg2000":
		return FormatJ2K, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	if f == FormatRaw {
		return "raw.zst"
	}
	return string(f)
}

// ExportOptions configures ExportFrames.
type ExportOptions struct {
	Dir    string
	Prefix string // defaults to "frame"
	Format Format // defaults to FormatPNG

	// First and Last select an inclusive frame range. Last < 0 means the
	// last frame of the movie.
	First int
	Last  int

	// HighThroughput enables HTJ2K block coding for FormatJ2K.
	HighThroughput bool
}

// DefaultExportOptions exports every frame as PNG into dir.
func DefaultExportOptions(dir string) ExportOptions {
	return ExportOptions{Dir: dir, Prefix: "frame", Format: FormatPNG, Last: -1}
}

// FrameFileName returns the name of the file holding frame i.
func FrameFileName(prefix string, i int, f Format) string {
	return fmt.Sprintf("%s_%05d.%s", prefix, i, f.Ext())
}

func (o ExportOptions) frameRange(n int) (int, int, error) {
	first, last := o.First, o.Last
	if last < 0 {
		last = n - 1
	}
	if first < 0 || first >= n || last >= n || first > last {
		return 0, 0, fmt.Errorf("pdsutil: frame range [%d, %d] outside movie of %d frames", o.First, o.Last, n)
	}
	return first, last, nil
}

// ExportFrames writes the selected frames of m and returns the paths
// written. Image formats produce one file per frame; FormatRaw produces a
// single zstd-compressed stack.
//
// Frames are read with positional reads and encoded in parallel according
// to pds.GetParallelConfig.
func ExportFrames(m *pds.Movie, opts ExportOptions) ([]string, error) {
	if opts.Prefix == "" {
		opts.Prefix = "frame"
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	first, last, err := opts.frameRange(m.FrameCount())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}

	if opts.Format == FormatRaw {
		path := filepath.Join(opts.Dir, opts.Prefix+"."+opts.Format.Ext())
		if err := exportRaw(m, path, first, last); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	batch := pds.GetParallelConfig().Workers() * 4

	var paths []string
	for start := first; start <= last; start += batch {
		end := start + batch - 1
		if end > last {
			end = last
		}
		indices := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			indices = append(indices, i)
		}

		frames, err := m.ReadFrames(indices)
		if err != nil {
			return nil, err
		}

		names := make([]string, len(indices))
		err = pds.ParallelForWithError(len(indices), func(k int) error {
			name := filepath.Join(opts.Dir, FrameFileName(opts.Prefix, indices[k], opts.Format))
			if err := writeFrameFile(name, frames[k], opts); err != nil {
				return fmt.Errorf("export frame %d: %w", indices[k], err)
			}
			names[k] = name
			return nil
		})
		if err != nil {
			return nil, err
		}
		paths = append(paths, names...)
	}
	return paths, nil
}

func writeFrameFile(path string, f *pds.Frame, opts ExportOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := EncodeFrame(w, f, opts.Format, opts.HighThroughput); err != nil {
		out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// EncodeFrame encodes one frame as an image in the given format.
// FormatRaw is not a single-frame format and is rejected.
func EncodeFrame(w io.Writer, f *pds.Frame, format Format, highThroughput bool) error {
	switch format {
	case FormatPNG:
		return WritePNG(w, f)
	case FormatTIFF:
		return WriteTIFF(w, f)
	case FormatJ2K:
		return WriteJ2K(w, f, highThroughput)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WritePNG encodes a frame as an 8- or 16-bit grayscale PNG.
func WritePNG(w io.Writer, f *pds.Frame) error {
	if f.Width == 0 || f.Height == 0 {
		return errEmptyFrame
	}
	return png.Encode(w, f.Image())
}

// WriteTIFF encodes a frame as a Deflate-compressed grayscale TIFF,
// keeping the full 16-bit depth of mono16 movies.
func WriteTIFF(w io.Writer, f *pds.Frame) error {
	if f.Width == 0 || f.Height == 0 {
		return errEmptyFrame
	}
	return tiff.Encode(w, f.Image(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// WriteJ2K encodes a frame as a lossless JPEG 2000 codestream.
func WriteJ2K(w io.Writer, f *pds.Frame, highThroughput bool) error {
	if f.Width == 0 || f.Height == 0 {
		return errEmptyFrame
	}
	opts := &jpeg2000.Options{
		Format:         jpeg2000.FormatJ2K,
		Lossless:       true,
		NumResolutions: j2kResolutions(f.Width, f.Height),
	}
	if highThroughput {
		opts.HighThroughput = true
		opts.HTBlockWidth = 64
		opts.HTBlockHeight = 64
	}

	var buf bytes.Buffer
	if err := jpeg2000.Encode(&buf, f.Image(), opts); err != nil {
		return fmt.Errorf("pdsutil: jpeg2000 encode failed: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeJ2K decodes a codestream written by WriteJ2K.
func DecodeJ2K(r io.Reader) (image.Image, error) {
	img, err := jpeg2000.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pdsutil: jpeg2000 decode failed: %w", err)
	}
	return img, nil
}

// j2kResolutions caps the decomposition depth so the smallest resolution
// level keeps at least one pixel.
func j2kResolutions(width, height int) int {
	d := width
	if height < d {
		d = height
	}
	res := 1
	for d > 1 && res < 6 {
		d >>= 1
		res++
	}
	return res
}

var errEmptyFrame = errors.New("pdsutil: cannot encode a frame without pixels")

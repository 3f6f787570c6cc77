// pdstool inspects, validates and converts Pixelink PDS movies.
//
// Usage:
//
//	pdstool [--log-level LEVEL] <command> [options] <file> ...
//
// Commands:
//
//	info        Print frame count, geometry and timing of each movie.
//	check       Validate movies. Exit code indicates pass/fail.
//	timestamps  Write the frame timestamps as CSV.
//	stats       Print per-frame minimum, maximum and mean sample values.
//	export      Write frames as PNG, TIFF, JPEG 2000 or a zstd raw stack.
//
// Exit codes:
//
//	0: Success / all files valid
//	1: One or more files invalid
//	2: Error (file not found, bad arguments, etc.)
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/pdsmovie/go-pds/pds"
	"github.com/pdsmovie/go-pds/pdsutil"
)

const version = "1.0.0"

// exitError carries a process exit code out of a command action.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.Run(args)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "pdstool: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "pdstool: %v\n", err)
	return 2
}

func newApp(stdout, stderr io.Writer) *cli.App {
	log := NewLogger(LevelInfo, stdout, stderr)

	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "output format: text, json or yaml",
	}

	return &cli.App{
		Name:           "pdstool",
		Usage:          "inspect, validate and convert Pixelink PDS movies",
		Version:        version,
		Writer:         stdout,
		ErrWriter:      stderr,
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn, error or quiet",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := ParseLogLevel(c.String("log-level"))
			if err != nil {
				return usageError("%v", err)
			}
			log.level = level
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print frame count, geometry and timing",
				ArgsUsage: "<file> [<file> ...]",
				Flags:     []cli.Flag{formatFlag},
				Action: func(c *cli.Context) error {
					return infoAction(c, log)
				},
			},
			{
				Name:      "check",
				Usage:     "validate movies",
				ArgsUsage: "<file> [<file> ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only output errors"},
					&cli.BoolFlag{Name: "deep", Usage: "read every frame payload as well"},
				},
				Action: func(c *cli.Context) error {
					return checkAction(c, log)
				},
			},
			{
				Name:      "timestamps",
				Usage:     "write frame timestamps as CSV",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "CSV file (default: stdout)"},
				},
				Action: func(c *cli.Context) error {
					return timestampsAction(c, log)
				},
			},
			{
				Name:      "stats",
				Usage:     "print per-frame sample statistics",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{formatFlag},
				Action: func(c *cli.Context) error {
					return statsAction(c, log)
				},
			},
			{
				Name:      "export",
				Usage:     "export frames as images or a raw stack",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML export job"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "png, tiff, j2k or raw (default: png)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (default: .)"},
					&cli.StringFlag{Name: "prefix", Usage: "output file name prefix (default: frame)"},
					&cli.IntFlag{Name: "first", Usage: "first frame to export"},
					&cli.IntFlag{Name: "last", Usage: "last frame to export, -1 for the last frame"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "encoder goroutines (default: all CPUs)"},
					&cli.BoolFlag{Name: "ht", Usage: "use HTJ2K block coding for j2k output"},
				},
				Action: func(c *cli.Context) error {
					return exportAction(c, log)
				},
			},
		},
	}
}

// writeReport renders v as JSON or YAML, or calls text for plain output.
func writeReport(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch strings.ToLower(format) {
	case "", "text":
		text(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return usageError("unknown output format %q", format)
}

func infoAction(c *cli.Context, log *Logger) error {
	if c.NArg() == 0 {
		return usageError("no input files specified")
	}

	var infos []*pdsutil.FileInfo
	failed := false
	for _, path := range c.Args().Slice() {
		info, err := pdsutil.GetFileInfo(path)
		if err != nil {
			log.Error("%s: %v", path, err)
			failed = true
			continue
		}
		infos = append(infos, info)
	}

	err := writeReport(c.App.Writer, c.String("format"), infos, func(w io.Writer) {
		for _, info := range infos {
			fmt.Fprintf(w, "%s\n", info.Path)
			fmt.Fprintf(w, "  frames:     %d\n", info.Frames)
			fmt.Fprintf(w, "  geometry:   %dx%d %s (%d bytes/sample)\n", info.Width, info.Height, info.PixelFormat, info.BytesPerSample)
			fmt.Fprintf(w, "  file size:  %d bytes\n", info.FileSize)
			if info.Frames > 0 {
				fmt.Fprintf(w, "  timestamps: %g s to %g s\n", info.FirstTimestamp, info.LastTimestamp)
			}
			if info.FrameRate > 0 {
				fmt.Fprintf(w, "  frame rate: %.3f fps\n", info.FrameRate)
			}
		}
	})
	if err != nil {
		return err
	}
	if failed {
		return &exitError{code: 2}
	}
	return nil
}

func checkAction(c *cli.Context, log *Logger) error {
	if c.NArg() == 0 {
		return usageError("no input files specified")
	}
	quiet := c.Bool("quiet")
	w := c.App.Writer

	files := c.Args().Slice()
	validCount := 0
	errorOccurred := false
	for _, path := range files {
		result, err := pdsutil.Validate(path, c.Bool("deep"))
		if err != nil {
			log.Error("%s: error: %v", path, err)
			errorOccurred = true
			continue
		}
		if result.IsValid() {
			validCount++
		}

		if !quiet {
			printResult(w, result)
		} else if result.HasErrors() {
			for _, issue := range result.Issues {
				if issue.Severity == pdsutil.SeverityError {
					log.Error("%s: %s", path, issue.Message)
				}
			}
		}
	}

	if len(files) > 1 && !quiet {
		fmt.Fprintf(w, "\nSummary: %d of %d files valid\n", validCount, len(files))
	}

	if errorOccurred {
		return &exitError{code: 2}
	}
	if validCount < len(files) {
		return &exitError{code: 1}
	}
	return nil
}

func printResult(w io.Writer, result *pdsutil.ValidationResult) {
	if result.IsValid() {
		fmt.Fprintf(w, "%s: OK\n", result.Filename)
	} else {
		fmt.Fprintf(w, "%s: INVALID\n", result.Filename)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(issue.Severity), issue.Message)
	}
	if len(result.Issues) > 0 {
		fmt.Fprintf(w, "  Checks performed: %s\n", strings.Join(result.Checks, ", "))
	}
}

func openSingle(c *cli.Context) (*pds.Movie, error) {
	if c.NArg() != 1 {
		return nil, usageError("expected exactly one input file, got %d", c.NArg())
	}
	return pds.OpenFile(c.Args().First())
}

func timestampsAction(c *cli.Context, log *Logger) error {
	m, err := openSingle(c)
	if err != nil {
		return err
	}
	defer m.Close()

	ts, err := m.Timestamps()
	if err != nil {
		return err
	}

	out := c.String("output")
	if out == "" {
		return pdsutil.WriteTimestampsCSV(c.App.Writer, ts)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := pdsutil.WriteTimestampsCSV(f, ts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("wrote %d timestamps to %s", len(ts), out)
	return nil
}

func statsAction(c *cli.Context, log *Logger) error {
	m, err := openSingle(c)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Debug("reading %d frames of %dx%d", m.FrameCount(), m.Width(), m.Height())
	stats, err := pdsutil.MovieStats(m)
	if err != nil {
		return err
	}
	return writeReport(c.App.Writer, c.String("format"), stats, func(w io.Writer) {
		fmt.Fprintf(w, "%6s %6s %6s %12s\n", "frame", "min", "max", "mean")
		for i, st := range stats {
			fmt.Fprintf(w, "%6d %6d %6d %12.3f\n", i, st.Min, st.Max, st.Mean)
		}
	})
}

func exportAction(c *cli.Context, log *Logger) error {
	job := DefaultExportJob()
	if path := c.String("config"); path != "" {
		var err error
		if job, err = LoadExportJob(path); err != nil {
			return usageError("%v", err)
		}
		log.Debug("loaded export job from %s", path)
	}
	if c.IsSet("format") {
		job.Format = c.String("format")
	}
	if c.IsSet("out") {
		job.Out = c.String("out")
	}
	if c.IsSet("prefix") {
		job.Prefix = c.String("prefix")
	}
	if c.IsSet("first") {
		job.First = c.Int("first")
	}
	if c.IsSet("last") {
		last := c.Int("last")
		job.Last = &last
	}
	if c.IsSet("workers") {
		job.Workers = c.Int("workers")
	}
	if c.IsSet("ht") {
		job.HighThroughput = c.Bool("ht")
	}

	opts, err := job.Options()
	if err != nil {
		return usageError("%v", err)
	}
	if job.Workers > 0 {
		cfg := pds.GetParallelConfig()
		cfg.NumWorkers = job.Workers
		pds.SetParallelConfig(cfg)
	}

	m, err := openSingle(c)
	if err != nil {
		return err
	}
	defer m.Close()

	paths, err := pdsutil.ExportFrames(m, opts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Debug("wrote %s", p)
	}
	log.Info("exported %d file(s) to %s", len(paths), opts.Dir)
	return nil
}

package pdsutil

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pdsmovie/go-pds/pds"
)

// Severity of a validation issue.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationIssue represents a single validation problem found in a file.
type ValidationIssue struct {
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
}

// ValidationResult contains all validation results for a file.
type ValidationResult struct {
	Filename string            `json:"filename" yaml:"filename"`
	Issues   []ValidationIssue `json:"issues" yaml:"issues"`
	Checks   []string          `json:"checks" yaml:"checks"`
}

// IsValid returns true if there are no errors (warnings are ok).
func (r *ValidationResult) IsValid() bool {
	return !r.HasErrors()
}

// HasErrors returns true if there are any error-level issues.
func (r *ValidationResult) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *ValidationResult) add(severity, format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: severity, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a PDS movie. Format problems are reported as issues;
// a non-nil error means the file could not be examined at all.
//
// With deep set, every frame payload is read as well, which catches files
// truncated or rewritten after their header was written.
func Validate(path string, deep bool) (*ValidationResult, error) {
	result := &ValidationResult{
		Filename: path,
		Issues:   []ValidationIssue{},
		Checks:   []string{},
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	result.Checks = append(result.Checks, "header")
	m, err := pds.OpenFile(path)
	if err != nil {
		var fe *pds.FormatError
		if errors.As(err, &fe) {
			result.add(SeverityError, "%s", fe.Error())
			return result, nil
		}
		return nil, err
	}
	defer m.Close()

	if m.FrameCount() == 0 {
		result.add(SeverityWarning, "movie has no frames")
	}
	if m.FrameCount() > 0 && m.FrameSize() == 0 {
		result.add(SeverityWarning, "frames have no pixels (%dx%d)", m.Width(), m.Height())
	}

	result.Checks = append(result.Checks, "timestamps")
	ts, err := m.Timestamps()
	if err != nil {
		result.add(SeverityError, "reading timestamps: %v", err)
		return result, nil
	}
	checkTimestamps(result, ts)

	if deep {
		result.Checks = append(result.Checks, "frames")
		if err := m.Each(func(int, *pds.Frame) error { return nil }); err != nil {
			result.add(SeverityError, "reading frames: %v", err)
		}
	}

	return result, nil
}

func checkTimestamps(result *ValidationResult, ts []float32) {
	nonFinite, backwards := 0, 0
	first := -1
	for i, v := range ts {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			nonFinite++
			continue
		}
		if i > 0 && v < ts[i-1] {
			backwards++
			if first < 0 {
				first = i
			}
		}
	}
	if nonFinite > 0 {
		result.add(SeverityWarning, "%d timestamps are not finite", nonFinite)
	}
	if backwards > 0 {
		result.add(SeverityWarning, "timestamps go backwards %d times (first at frame %d)", backwards, first)
	}
}

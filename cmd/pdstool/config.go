package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pdsmovie/go-pds/pdsutil"
)

// ExportJob is the YAML form of an export run. Command line flags
// override the values loaded from a file.
type ExportJob struct {
	Format         string `yaml:"format"`
	Out            string `yaml:"out"`
	Prefix         string `yaml:"prefix"`
	First          int    `yaml:"first"`
	Last           *int   `yaml:"last"`
	Workers        int    `yaml:"workers"`
	HighThroughput bool   `yaml:"high_throughput"`
}

// DefaultExportJob returns the job used when no file is given.
func DefaultExportJob() ExportJob {
	return ExportJob{Format: string(pdsutil.FormatPNG), Out: ".", Prefix: "frame"}
}

// LoadExportJob reads an export job from a YAML file on top of the
// defaults.
func LoadExportJob(path string) (ExportJob, error) {
	job := DefaultExportJob()
	data, err := os.ReadFile(path)
	if err != nil {
		return job, err
	}
	if err := yaml.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("parse %s: %w", path, err)
	}
	return job, nil
}

// Options converts the job into pdsutil export options.
func (j ExportJob) Options() (pdsutil.ExportOptions, error) {
	format, err := pdsutil.ParseFormat(j.Format)
	if err != nil {
		return pdsutil.ExportOptions{}, err
	}
	last := -1
	if j.Last != nil {
		last = *j.Last
	}
	return pdsutil.ExportOptions{
		Dir:            j.Out,
		Prefix:         j.Prefix,
		Format:         format,
		First:          j.First,
		Last:           last,
		HighThroughput: j.HighThroughput,
	}, nil
}

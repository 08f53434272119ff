package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

// Job describes one reconciliation run from the command line
type Job struct {
	SourceA JobSource             `yaml:"source_a"`
	SourceB JobSource             `yaml:"source_b"`
	Rules   matcher.MatchingRules `yaml:"rules"`
}

// JobSource is one side of a job: where the rows live and how to read them
type JobSource struct {
	Label   string      `yaml:"label"`
	File    string      `yaml:"file"`
	Sheet   string      `yaml:"sheet"`
	Columns rows.Schema `yaml:"columns"`
}

// Source returns the matcher view of the job side
func (s JobSource) Source() matcher.SourceConfig {
	return matcher.SourceConfig{Label: s.Label, Columns: s.Columns}
}

// LoadJob reads a job file. Relative file paths resolve against the job
// file's directory; rules omitted from the file keep matcher.DefaultRules.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	job := Job{Rules: matcher.DefaultRules()}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &job); err != nil {
		return nil, fmt.Errorf("failed to parse job %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, side := range []*JobSource{&job.SourceA, &job.SourceB} {
		if side.File != "" && !filepath.IsAbs(side.File) {
			side.File = filepath.Join(dir, side.File)
		}
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("job %s: %w", path, err)
	}
	return &job, nil
}

// Validate checks labels and schemas, then defers to matcher.ValidateConfig
func (j *Job) Validate() error {
	var errs []error
	if j.SourceA.Label == "" {
		errs = append(errs, errors.New("source_a.label is required"))
	}
	if j.SourceB.Label == "" {
		errs = append(errs, errors.New("source_b.label is required"))
	}
	if len(j.SourceA.Columns) == 0 {
		errs = append(errs, errors.New("source_a.columns is required"))
	}
	if len(j.SourceB.Columns) == 0 {
		errs = append(errs, errors.New("source_b.columns is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return matcher.ValidateConfig(j.SourceA.Source(), j.SourceB.Source(), j.Rules)
}

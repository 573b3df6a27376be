// Package jobs turns enumerated views into export jobs and persists view
// lists as YAML jobs files.
package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Entry is one view in a jobs file. Request fields override the template.
type Entry struct {
	report.View `yaml:",inline"`
	StartDate   string   `yaml:"start_date,omitempty"`
	EndDate     string   `yaml:"end_date,omitempty"`
	Dimensions  []string `yaml:"dimensions,omitempty,flow"`
	Metrics     []string `yaml:"metrics,omitempty,flow"`
}

// File is the jobs file document.
type File struct {
	Views []Entry `yaml:"views"`
}

// Build creates one job per view, in order, from tpl.
func Build(views []report.View, tpl report.Template) []report.Job {
	out := make([]report.Job, 0, len(views))
	for _, v := range views {
		out = append(out, report.NewJob(v, tpl))
	}
	return out
}

// FromEntries creates jobs from jobs file entries, applying per-entry
// overrides on top of tpl.
func FromEntries(entries []Entry, tpl report.Template) ([]report.Job, error) {
	out := make([]report.Job, 0, len(entries))
	for i, e := range entries {
		if e.ViewID == "" {
			return nil, fmt.Errorf("views[%d]: view_id must not be empty", i)
		}
		if e.PropertyID == "" {
			return nil, fmt.Errorf("views[%d]: property_id must not be empty", i)
		}

		t := tpl
		if e.StartDate != "" {
			t.DateRange.StartDate = e.StartDate
		}
		if e.EndDate != "" {
			t.DateRange.EndDate = e.EndDate
		}
		if len(e.Dimensions) > 0 {
			t.Dimensions = e.Dimensions
		}
		if len(e.Metrics) > 0 {
			t.Metrics = e.Metrics
		}
		out = append(out, report.NewJob(e.View, t))
	}
	return out, nil
}

// LoadFile reads a jobs file and builds its jobs.
func LoadFile(path string, tpl report.Template) ([]report.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file %s; %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse jobs file %s; %w", path, err)
	}

	jobs, err := FromEntries(f.Views, tpl)
	if err != nil {
		return nil, fmt.Errorf("invalid jobs file %s; %w", path, err)
	}
	return jobs, nil
}

// WriteFile writes views as a jobs file that LoadFile accepts.
func WriteFile(path string, views []report.View) error {
	f := File{Views: make([]Entry, 0, len(views))}
	for _, v := range views {
		f.Views = append(f.Views, Entry{View: v})
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal jobs file; %w", err)
	}

	header := fmt.Sprintf("# gaexport jobs file\n# Generated: %s\n\n", time.Now().Format(time.RFC3339))
	content := append([]byte(header), data...)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s; %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write jobs file %s; %w", path, err)
	}
	return nil
}

// Filter keeps the jobs whose view ID or job ID is listed in ids, in their
// original order. An empty ids keeps every job. An id that matches nothing
// is an error.
func Filter(all []report.Job, ids []string) ([]report.Job, error) {
	if len(ids) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = false
	}

	var out []report.Job
	for _, j := range all {
		hit := false
		for _, key := range []string{j.ViewID, j.ID()} {
			if _, ok := want[key]; ok {
				want[key] = true
				hit = true
			}
		}
		if hit {
			out = append(out, j)
		}
	}

	for _, id := range ids {
		if !want[id] {
			return nil, fmt.Errorf("view %q not found", id)
		}
	}
	return out, nil
}

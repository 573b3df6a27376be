// Package report defines the data model shared by the export engine: views,
// export jobs, report pages and the fetch failure taxonomy.
package report

import (
	"context"
	"net/url"
	"slices"
	"strings"
)

// DefaultPageSize matches the page semantics of the reporting backend.
const DefaultPageSize = 1000

// View is one reporting view discovered by enumeration.
type View struct {
	AccountID    string `yaml:"account_id,omitempty"`
	AccountName  string `yaml:"account_name,omitempty"`
	PropertyID   string `yaml:"property_id"`
	PropertyName string `yaml:"property_name"`
	WebsiteURL   string `yaml:"website_url"`
	ViewID       string `yaml:"view_id"`
	ViewName     string `yaml:"view_name"`
}

// DateRange is an inclusive report date range in backend syntax
// (YYYY-MM-DD or relative values like "today").
type DateRange struct {
	StartDate string `yaml:"start_date" mapstructure:"start_date"`
	EndDate   string `yaml:"end_date" mapstructure:"end_date"`
}

// Template carries the request shape applied to every view of a batch.
type Template struct {
	DateRange  DateRange
	Dimensions []string
	Metrics    []string
}

// Job is one (property, view) export. Construct it with NewJob; the
// dimension and metric lists are owned by the job and must not be mutated.
type Job struct {
	View
	DateRange  DateRange
	dimensions []string
	metrics    []string
}

// NewJob builds the job for a view from a request template.
func NewJob(v View, tpl Template) Job {
	return Job{
		View:       v,
		DateRange:  tpl.DateRange,
		dimensions: slices.Clone(tpl.Dimensions),
		metrics:    slices.Clone(tpl.Metrics),
	}
}

// ID returns the stable identifier of the job.
func (j Job) ID() string {
	return j.PropertyID + "." + j.ViewID
}

// Label returns the human label used in progress output.
func (j Job) Label() string {
	return j.PropertyName + "-" + j.ViewName + "-" + j.WebsiteURL
}

// Dimensions returns a copy of the ordered dimension list.
func (j Job) Dimensions() []string { return slices.Clone(j.dimensions) }

// Metrics returns a copy of the ordered metric expression list.
func (j Job) Metrics() []string { return slices.Clone(j.metrics) }

// Domain returns the host of the view's website URL. A value without a
// scheme is parsed as an http URL; anything unparsable is returned as is.
func (j Job) Domain() string {
	raw := strings.TrimSpace(j.WebsiteURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return j.WebsiteURL
	}
	return u.Hostname()
}

// FileName returns the deterministic output file name of the job:
// {propertyId}.{viewId}+{domain}+{propertyName}+{viewName}.csv with every
// filesystem-invalid character replaced by '_'.
func (j Job) FileName() string {
	return SanitizeFileName(j.PropertyID + "." + j.ViewID + "+" + j.Domain() + "+" +
		j.PropertyName + "+" + j.ViewName + ".csv")
}

// SanitizeFileName replaces characters that are invalid in file names on
// common filesystems (<>:"/\|?* and control characters) with '_'.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
}

// Row is one result row: dimension values followed by metric values. A
// metric may carry several values (one per date range or segment).
type Row struct {
	Dimensions []string
	Metrics    [][]string
}

// Record flattens the row into a CSV record.
func (r Row) Record() []string {
	n := len(r.Dimensions)
	for _, m := range r.Metrics {
		n += len(m)
	}
	rec := make([]string, 0, n)
	rec = append(rec, r.Dimensions...)
	for _, m := range r.Metrics {
		rec = append(rec, m...)
	}
	return rec
}

// Page is the result of one fetch.
type Page struct {
	// Column headers; only present on the first page of a job.
	DimensionHeaders []string
	MetricHeaders    []string

	Rows []Row

	// RowCount is the total number of rows matching the request.
	RowCount int

	// NextPageToken is the backend's own continuation token, if any.
	NextPageToken string
}

// HasHeader reports whether the page carries column headers.
func (p *Page) HasHeader() bool {
	return len(p.DimensionHeaders)+len(p.MetricHeaders) > 0
}

// Header returns the CSV header: dimension names then metric names.
func (p *Page) Header() []string {
	h := make([]string, 0, len(p.DimensionHeaders)+len(p.MetricHeaders))
	h = append(h, p.DimensionHeaders...)
	return append(h, p.MetricHeaders...)
}

// Fetcher retrieves one page of a job's report starting at cursor.
// Implementations perform exactly one backend request per call and return
// failures classified with RateLimited, Transient or Fatal.
type Fetcher interface {
	Fetch(ctx context.Context, job Job, cursor, pageSize int) (*Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, job Job, cursor, pageSize int) (*Page, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, job Job, cursor, pageSize int) (*Page, error) {
	return f(ctx, job, cursor, pageSize)
}

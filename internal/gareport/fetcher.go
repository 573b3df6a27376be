package gareport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"
	"google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/option"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Fetcher is a report.Fetcher backed by reports:batchGet.
type Fetcher struct {
	svc     *analyticsreporting.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a fetcher for cfg. Additional client options (for
// example an endpoint override) may be passed in opts.
func NewFetcher(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Fetcher, error) {
	svc, err := analyticsreporting.NewService(ctx, ClientOptions(cfg, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reporting service; %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Fetcher{
		svc:     svc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// Fetch requests the page of job starting at cursor.
func (f *Fetcher) Fetch(ctx context.Context, job report.Job, cursor, pageSize int) (*report.Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := &analyticsreporting.GetReportsRequest{
		ReportRequests: []*analyticsreporting.ReportRequest{buildRequest(job, cursor, pageSize)},
	}

	f.logger.Debug("requesting report page", "view_id", job.ViewID, "cursor", cursor, "page_size", pageSize)
	resp, err := f.svc.Reports.BatchGet(req).Context(ctx).Do()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify(err)
	}

	return convertResponse(resp)
}

func buildRequest(job report.Job, cursor, pageSize int) *analyticsreporting.ReportRequest {
	req := &analyticsreporting.ReportRequest{
		ViewId: job.ViewID,
		DateRanges: []*analyticsreporting.DateRange{{
			StartDate: job.DateRange.StartDate,
			EndDate:   job.DateRange.EndDate,
		}},
		PageSize: int64(pageSize),
	}
	if cursor > 0 {
		req.PageToken = strconv.Itoa(cursor)
	}
	for _, d := range job.Dimensions() {
		req.Dimensions = append(req.Dimensions, &analyticsreporting.Dimension{Name: d})
	}
	for _, m := range job.Metrics() {
		req.Metrics = append(req.Metrics, &analyticsreporting.Metric{Expression: m})
	}
	return req
}

func convertResponse(resp *analyticsreporting.GetReportsResponse) (*report.Page, error) {
	if resp == nil || len(resp.Reports) == 0 || resp.Reports[0] == nil {
		return nil, report.Transient(errors.New("response contains no report"))
	}
	r := resp.Reports[0]
	page := &report.Page{NextPageToken: r.NextPageToken}

	if h := r.ColumnHeader; h != nil {
		page.DimensionHeaders = append(page.DimensionHeaders, h.Dimensions...)
		if h.MetricHeader != nil {
			for _, e := range h.MetricHeader.MetricHeaderEntries {
				page.MetricHeaders = append(page.MetricHeaders, e.Name)
			}
		}
	}

	if r.Data != nil {
		page.RowCount = int(r.Data.RowCount)
		page.Rows = make([]report.Row, 0, len(r.Data.Rows))
		for _, row := range r.Data.Rows {
			out := report.Row{Dimensions: row.Dimensions}
			for _, m := range row.Metrics {
				out.Metrics = append(out.Metrics, m.Values)
			}
			page.Rows = append(page.Rows, out)
		}
	}
	return page, nil
}

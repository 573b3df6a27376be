package gareport

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	analytics "google.golang.org/api/analytics/v3"
	"google.golang.org/api/option"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// summaryPageSize is the max-results used when listing account summaries.
const summaryPageSize = 1000

// Lister enumerates the views visible to the session.
type Lister struct {
	svc *analytics.Service
}

// NewLister creates a view lister for cfg.
func NewLister(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Lister, error) {
	svc, err := analytics.NewService(ctx, ClientOptions(cfg, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create management service; %w", err)
	}
	return &Lister{svc: svc}, nil
}

// ListViews returns every view in batch order: accounts as returned,
// web properties by name descending, views as returned.
func (l *Lister) ListViews(ctx context.Context) ([]report.View, error) {
	var views []report.View
	start := int64(1)

	for {
		resp, err := l.svc.Management.AccountSummaries.List().
			StartIndex(start).
			MaxResults(summaryPageSize).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list account summaries; %w", err)
		}

		for _, acct := range resp.Items {
			views = append(views, accountViews(acct)...)
		}

		if resp.NextLink == "" || len(resp.Items) == 0 {
			break
		}
		start += int64(len(resp.Items))
	}
	return views, nil
}

func accountViews(acct *analytics.AccountSummary) []report.View {
	props := slices.Clone(acct.WebProperties)
	slices.SortStableFunc(props, func(a, b *analytics.WebPropertySummary) int {
		return cmp.Compare(b.Name, a.Name)
	})

	var views []report.View
	for _, p := range props {
		for _, prof := range p.Profiles {
			views = append(views, report.View{
				AccountID:    acct.Id,
				AccountName:  acct.Name,
				PropertyID:   p.Id,
				PropertyName: p.Name,
				WebsiteURL:   p.WebsiteUrl,
				ViewID:       prof.Id,
				ViewName:     prof.Name,
			})
		}
	}
	return views
}

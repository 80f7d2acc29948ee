package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// PageViewSource fetches page-view events for one contact.
type PageViewSource interface {
	PageViews(ctx context.Context, contactID string) ([]hubspot.PageView, error)
}

// PageViews renders the recent page views of a contact newest-first.
func PageViews(ctx context.Context, src PageViewSource, contactID string) (string, error) {
	views, err := src.PageViews(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("fetching page views: %w", err)
	}
	if len(views) == 0 {
		return fmt.Sprintf("No page views recorded for contact %s.", contactID), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Page views for contact %s (%d)\n\n", contactID, len(views))
	for _, v := range views {
		line := v.OccurredAt.UTC().Format("2006-01-02 15:04") + "  " + v.URL
		if v.Title != "" {
			line += "  (" + v.Title + ")"
		}
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}

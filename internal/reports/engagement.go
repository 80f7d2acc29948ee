// Package reports builds the plain-text analysis reports exposed as MCP
// tools: email engagement aggregation and per-contact page-view lookups.
package reports

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// EmailEventSource fetches email engagement events of one type.
type EmailEventSource interface {
	EmailEvents(ctx context.Context, eventType string, since time.Time) ([]hubspot.EmailEvent, error)
}

type campaignStats struct {
	name   string
	sent   int
	opens  int
	clicks int
}

// EmailEngagement aggregates sent/open/click counts per campaign over the
// trailing window and renders an aligned text table, sorted by send volume.
func EmailEngagement(ctx context.Context, src EmailEventSource, sinceDays int) (string, error) {
	if sinceDays <= 0 {
		sinceDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -sinceDays)

	stats := make(map[int64]*campaignStats)
	tally := func(eventType string, count func(*campaignStats)) error {
		events, err := src.EmailEvents(ctx, eventType, since)
		if err != nil {
			return fmt.Errorf("fetching %s events: %w", eventType, err)
		}
		for _, ev := range events {
			cs, ok := stats[ev.CampaignID]
			if !ok {
				cs = &campaignStats{name: ev.Campaign}
				stats[ev.CampaignID] = cs
			}
			if cs.name == "" {
				cs.name = ev.Campaign
			}
			count(cs)
		}
		return nil
	}

	if err := tally("SENT", func(cs *campaignStats) { cs.sent++ }); err != nil {
		return "", err
	}
	if err := tally("OPEN", func(cs *campaignStats) { cs.opens++ }); err != nil {
		return "", err
	}
	if err := tally("CLICK", func(cs *campaignStats) { cs.clicks++ }); err != nil {
		return "", err
	}

	if len(stats) == 0 {
		return fmt.Sprintf("No email events in the last %d days.", sinceDays), nil
	}

	type row struct {
		id int64
		*campaignStats
	}
	rows := make([]row, 0, len(stats))
	for id, cs := range stats {
		rows = append(rows, row{id: id, campaignStats: cs})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].sent != rows[j].sent {
			return rows[i].sent > rows[j].sent
		}
		return rows[i].id < rows[j].id
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Email engagement, last %d days\n\n", sinceDays)
	fmt.Fprintf(&b, "%-32s %7s %7s %7s %7s %7s\n", "Campaign", "Sent", "Opens", "Clicks", "Open%", "Click%")
	for _, r := range rows {
		name := r.name
		if name == "" {
			name = "Campaign " + strconv.FormatInt(r.id, 10)
		}
		if len(name) > 32 {
			name = name[:31] + "…"
		}
		fmt.Fprintf(&b, "%-32s %7d %7d %7d %6.1f%% %6.1f%%\n",
			name, r.sent, r.opens, r.clicks, rate(r.opens, r.sent), rate(r.clicks, r.sent))
	}
	return b.String(), nil
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

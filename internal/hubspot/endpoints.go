package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const pageLimit = 100

type listResponse[T any] struct {
	Results []T `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListPipelines returns all pipelines for a CRM object type (e.g. "deals"),
// each with its stages sorted by display order.
func (c *Client) ListPipelines(ctx context.Context, objectType string) ([]Pipeline, error) {
	var resp listResponse[Pipeline]
	path := "/crm/v3/pipelines/" + url.PathEscape(objectType)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing %s pipelines: %w", objectType, err)
	}
	for i := range resp.Results {
		sortStages(resp.Results[i].Stages)
	}
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].DisplayOrder < resp.Results[j].DisplayOrder
	})
	return resp.Results, nil
}

// GetPipeline fetches a single pipeline by id.
func (c *Client) GetPipeline(ctx context.Context, objectType, id string) (*Pipeline, error) {
	var p Pipeline
	path := "/crm/v3/pipelines/" + url.PathEscape(objectType) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return nil, err
	}
	sortStages(p.Stages)
	return &p, nil
}

func sortStages(stages []Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].DisplayOrder < stages[j].DisplayOrder
	})
}

// ListFlowPage fetches one page of workflow summaries. Pass the After token
// from the previous page to continue; an empty After in the result means the
// listing is complete.
func (c *Client) ListFlowPage(ctx context.Context, after string) (*FlowPage, error) {
	q := url.Values{"limit": {strconv.Itoa(pageLimit)}}
	if after != "" {
		q.Set("after", after)
	}
	var resp listResponse[Flow]
	if err := c.do(ctx, http.MethodGet, "/automation/v4/flows", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	page := &FlowPage{Results: resp.Results}
	if resp.Paging != nil && resp.Paging.Next != nil {
		page.After = resp.Paging.Next.After
	}
	return page, nil
}

// BatchReadFlows fetches full flow details (including the action graph) for
// the given ids. The API returns whatever subset it could resolve; missing
// ids are simply absent from the result.
func (c *Client) BatchReadFlows(ctx context.Context, ids []string) ([]Flow, error) {
	type input struct {
		ID string `json:"id"`
	}
	inputs := make([]input, len(ids))
	for i, id := range ids {
		inputs[i] = input{ID: id}
	}
	var resp listResponse[Flow]
	body := map[string]any{"inputs": inputs}
	if err := c.do(ctx, http.MethodPost, "/automation/v4/flows/batch/read", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("batch reading %d flows: %w", len(ids), err)
	}
	return resp.Results, nil
}

// GetFlow fetches a single flow with its full action graph.
func (c *Client) GetFlow(ctx context.Context, id string) (*Flow, error) {
	var f Flow
	if err := c.do(ctx, http.MethodGet, "/automation/v4/flows/"+url.PathEscape(id), nil, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

type emailEventsResponse struct {
	Events  []EmailEvent `json:"events"`
	HasMore bool         `json:"hasMore"`
	Offset  string       `json:"offset"`
}

// EmailEvents returns email engagement events of one type (SENT, OPEN,
// CLICK) created at or after since, following the offset-based pagination of
// the email events API.
func (c *Client) EmailEvents(ctx context.Context, eventType string, since time.Time) ([]EmailEvent, error) {
	var all []EmailEvent
	offset := ""
	for {
		q := url.Values{
			"eventType":      {eventType},
			"startTimestamp": {strconv.FormatInt(since.UnixMilli(), 10)},
			"limit":          {strconv.Itoa(pageLimit)},
		}
		if offset != "" {
			q.Set("offset", offset)
		}
		var resp emailEventsResponse
		if err := c.do(ctx, http.MethodGet, "/email/public/v1/events", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("listing %s email events: %w", eventType, err)
		}
		for i := range resp.Events {
			resp.Events[i].Created = time.UnixMilli(resp.Events[i].CreatedMS).UTC()
		}
		all = append(all, resp.Events...)
		if !resp.HasMore || resp.Offset == "" {
			return all, nil
		}
		offset = resp.Offset
	}
}

// PageViews returns recent page-view events for a single contact,
// newest first.
func (c *Client) PageViews(ctx context.Context, contactID string) ([]PageView, error) {
	q := url.Values{
		"objectType": {"contact"},
		"objectId":   {contactID},
		"eventType":  {"e_visited_page"},
		"limit":      {strconv.Itoa(pageLimit)},
	}
	var resp listResponse[PageView]
	if err := c.do(ctx, http.MethodGet, "/events/v3/events", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing page views for contact %s: %w", contactID, err)
	}
	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].OccurredAt.After(resp.Results[j].OccurredAt)
	})
	return resp.Results, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// detailChunkSize is the number of flow ids per batch-read request.
const detailChunkSize = 100

// FlowSource fetches workflows from the CRM. ListFlowPage returns summaries
// only; the action graph comes from BatchReadFlows or GetFlow.
type FlowSource interface {
	ListFlowPage(ctx context.Context, after string) (*hubspot.FlowPage, error)
	BatchReadFlows(ctx context.Context, ids []string) ([]hubspot.Flow, error)
	GetFlow(ctx context.Context, id string) (*hubspot.Flow, error)
}

// WorkflowCache memoizes the full workflow collection (a singleton category)
// with detail-merged action graphs.
type WorkflowCache struct {
	source FlowSource

	mu     sync.Mutex
	loaded bool
	flows  []hubspot.Flow
}

// NewWorkflowCache creates a cache backed by the given source.
func NewWorkflowCache(source FlowSource) *WorkflowCache {
	return &WorkflowCache{source: source}
}

// All returns every workflow with full detail merged in, fetching from
// upstream at most once per process. The listing is paginated upstream;
// detail is then batch-read in fixed-size chunks, concurrently across
// chunks. A failed chunk degrades to summary-only data for its flows rather
// than aborting the whole load.
func (c *WorkflowCache) All(ctx context.Context) ([]hubspot.Flow, error) {
	c.mu.Lock()
	if c.loaded {
		flows := c.flows
		c.mu.Unlock()
		return flows, nil
	}
	c.mu.Unlock()

	flows, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.flows = flows
	c.loaded = true
	c.mu.Unlock()
	return flows, nil
}

func (c *WorkflowCache) load(ctx context.Context) ([]hubspot.Flow, error) {
	var flows []hubspot.Flow
	after := ""
	for {
		page, err := c.source.ListFlowPage(ctx, after)
		if err != nil {
			return nil, err
		}
		flows = append(flows, page.Results...)
		if page.After == "" {
			break
		}
		after = page.After
	}
	if len(flows) == 0 {
		return nil, fmt.Errorf("no usable workflows in account")
	}

	// Each chunk owns a disjoint slice range, so merged results can be
	// written in place without a lock.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(flows); start += detailChunkSize {
		end := start + detailChunkSize
		if end > len(flows) {
			end = len(flows)
		}
		chunk := flows[start:end]
		g.Go(func() error {
			ids := make([]string, len(chunk))
			for i := range chunk {
				ids[i] = chunk[i].ID
			}
			details, err := c.source.BatchReadFlows(gCtx, ids)
			if err != nil {
				// Summary-only fallback for this chunk.
				slog.Warn("workflow detail fetch failed, keeping summaries", "count", len(ids), "error", err)
				return nil
			}
			byID := make(map[string]hubspot.Flow, len(details))
			for _, d := range details {
				byID[d.ID] = d
			}
			for i := range chunk {
				if d, ok := byID[chunk[i].ID]; ok {
					chunk[i] = mergeDetail(chunk[i], d)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flows, nil
}

// mergeDetail folds a detail record into its summary, preferring detail
// fields but keeping summary values where the detail endpoint omits them.
func mergeDetail(summary, detail hubspot.Flow) hubspot.Flow {
	merged := detail
	if merged.Name == "" {
		merged.Name = summary.Name
	}
	if merged.Type == "" {
		merged.Type = summary.Type
	}
	return merged
}

// Get returns a single workflow by id, preferring the memoized collection
// if it has already been loaded. Otherwise a direct single-flow fetch is
// issued; the collection cache is left unpopulated.
func (c *WorkflowCache) Get(ctx context.Context, id string) (*hubspot.Flow, error) {
	c.mu.Lock()
	loaded, flows := c.loaded, c.flows
	c.mu.Unlock()

	if loaded {
		for i := range flows {
			if flows[i].ID == id {
				return &flows[i], nil
			}
		}
		return nil, fmt.Errorf("workflow %s: %w", id, ErrNotFound)
	}

	f, err := c.source.GetFlow(ctx, id)
	if err != nil {
		if errors.Is(err, hubspot.ErrNotFound) {
			return nil, fmt.Errorf("workflow %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

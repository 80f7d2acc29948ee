// Package catalog lazily loads and memoizes CRM entity collections for the
// lifetime of the process. There is no TTL and no invalidation; a cache is
// only correct within a single run.
//
// First-access loads are not deduplicated: two callers racing on the first
// fetch of a category may both hit the upstream API. That duplication is
// accepted; only the memo maps themselves are guarded.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// ErrNotFound is returned when a requested entity does not exist upstream.
var ErrNotFound = errors.New("not found")

// PipelineSource fetches pipelines from the CRM.
type PipelineSource interface {
	ListPipelines(ctx context.Context, objectType string) ([]hubspot.Pipeline, error)
	GetPipeline(ctx context.Context, objectType, id string) (*hubspot.Pipeline, error)
}

// PipelineCache memoizes pipeline collections keyed by CRM object type.
type PipelineCache struct {
	source PipelineSource

	mu     sync.Mutex
	byType map[string][]hubspot.Pipeline
}

// NewPipelineCache creates a cache backed by the given source.
func NewPipelineCache(source PipelineSource) *PipelineCache {
	return &PipelineCache{
		source: source,
		byType: make(map[string][]hubspot.Pipeline),
	}
}

// All returns every pipeline for an object type, fetching from upstream at
// most once per type. An object type with no pipelines at all is a hard
// error: nothing downstream can work without one.
func (c *PipelineCache) All(ctx context.Context, objectType string) ([]hubspot.Pipeline, error) {
	c.mu.Lock()
	cached, ok := c.byType[objectType]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	pipelines, err := c.source.ListPipelines(ctx, objectType)
	if err != nil {
		return nil, err
	}
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("no usable pipelines for object type %q", objectType)
	}

	c.mu.Lock()
	c.byType[objectType] = pipelines
	c.mu.Unlock()
	return pipelines, nil
}

// Get returns a single pipeline by id. If the collection for the object type
// is already memoized it is searched directly; otherwise a direct
// single-entity fetch is issued without populating the collection cache.
func (c *PipelineCache) Get(ctx context.Context, objectType, id string) (*hubspot.Pipeline, error) {
	c.mu.Lock()
	cached, ok := c.byType[objectType]
	c.mu.Unlock()
	if ok {
		for i := range cached {
			if cached[i].ID == id {
				return &cached[i], nil
			}
		}
		return nil, fmt.Errorf("pipeline %s: %w", id, ErrNotFound)
	}

	p, err := c.source.GetPipeline(ctx, objectType, id)
	if err != nil {
		if errors.Is(err, hubspot.ErrNotFound) {
			return nil, fmt.Errorf("pipeline %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

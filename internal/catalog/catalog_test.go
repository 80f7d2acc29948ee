package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// --- pipeline stubs ---

type countingPipelineSource struct {
	listCalls atomic.Int32
	getCalls  atomic.Int32
	pipelines map[string][]hubspot.Pipeline
}

func (s *countingPipelineSource) ListPipelines(_ context.Context, objectType string) ([]hubspot.Pipeline, error) {
	s.listCalls.Add(1)
	return s.pipelines[objectType], nil
}

func (s *countingPipelineSource) GetPipeline(_ context.Context, objectType, id string) (*hubspot.Pipeline, error) {
	s.getCalls.Add(1)
	for _, p := range s.pipelines[objectType] {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("pipeline %s: %w", id, hubspot.ErrNotFound)
}

func dealPipelines() map[string][]hubspot.Pipeline {
	return map[string][]hubspot.Pipeline{
		"deals": {
			{ID: "p1", Label: "Sales Pipeline", Stages: []hubspot.Stage{{ID: "s1", Label: "New"}}},
			{ID: "p2", Label: "Support Pipeline"},
		},
	}
}

func TestPipelineCache_SingleFetchPerCategory(t *testing.T) {
	src := &countingPipelineSource{pipelines: dealPipelines()}
	c := NewPipelineCache(src)

	for range 3 {
		got, err := c.All(context.Background(), "deals")
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 pipelines, got %d", len(got))
		}
	}

	if calls := src.listCalls.Load(); calls != 1 {
		t.Errorf("expected exactly 1 upstream list fetch, got %d", calls)
	}
}

func TestPipelineCache_EmptyCategoryIsHardFailure(t *testing.T) {
	src := &countingPipelineSource{pipelines: map[string][]hubspot.Pipeline{}}
	c := NewPipelineCache(src)

	if _, err := c.All(context.Background(), "tickets"); err == nil {
		t.Fatal("expected an error for a category with no pipelines")
	}
}

func TestPipelineCache_GetPrefersMemoizedCollection(t *testing.T) {
	src := &countingPipelineSource{pipelines: dealPipelines()}
	c := NewPipelineCache(src)

	if _, err := c.All(context.Background(), "deals"); err != nil {
		t.Fatalf("All: %v", err)
	}

	p, err := c.Get(context.Background(), "deals", "p2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Label != "Support Pipeline" {
		t.Errorf("got %q", p.Label)
	}
	if calls := src.getCalls.Load(); calls != 0 {
		t.Errorf("Get should not hit upstream when the collection is cached, got %d calls", calls)
	}

	if _, err := c.Get(context.Background(), "deals", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPipelineCache_GetDirectFetchDoesNotPopulateCache(t *testing.T) {
	src := &countingPipelineSource{pipelines: dealPipelines()}
	c := NewPipelineCache(src)

	if _, err := c.Get(context.Background(), "deals", "p1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls := src.getCalls.Load(); calls != 1 {
		t.Fatalf("expected 1 direct fetch, got %d", calls)
	}

	// A later All must still perform the list fetch.
	if _, err := c.All(context.Background(), "deals"); err != nil {
		t.Fatalf("All: %v", err)
	}
	if calls := src.listCalls.Load(); calls != 1 {
		t.Errorf("expected 1 list fetch after Get+All, got %d", calls)
	}
}

// Concurrent first access may duplicate the upstream fetch; that is the
// accepted design trade-off, not a violation. This test documents it: the
// call count may exceed one, and every caller still gets a usable result.
func TestPipelineCache_ConcurrentFirstAccessMayDuplicate(t *testing.T) {
	src := &countingPipelineSource{pipelines: dealPipelines()}
	c := NewPipelineCache(src)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.All(context.Background(), "deals")
			if err != nil || len(got) != 2 {
				t.Errorf("All = (%d, %v)", len(got), err)
			}
		}()
	}
	wg.Wait()

	if calls := src.listCalls.Load(); calls < 1 {
		t.Errorf("expected at least 1 fetch, got %d", calls)
	}
}

// --- flow stubs ---

type stubFlowSource struct {
	listCalls  atomic.Int32
	batchCalls atomic.Int32
	pages      []hubspot.FlowPage
	details    map[string]hubspot.Flow
	failBatch  func(ids []string) bool
}

func (s *stubFlowSource) ListFlowPage(_ context.Context, after string) (*hubspot.FlowPage, error) {
	s.listCalls.Add(1)
	idx := 0
	if after != "" {
		i, err := strconv.Atoi(after)
		if err != nil {
			return nil, err
		}
		idx = i
	}
	if idx >= len(s.pages) {
		return &hubspot.FlowPage{}, nil
	}
	page := s.pages[idx]
	return &page, nil
}

func (s *stubFlowSource) BatchReadFlows(_ context.Context, ids []string) ([]hubspot.Flow, error) {
	s.batchCalls.Add(1)
	if s.failBatch != nil && s.failBatch(ids) {
		return nil, errors.New("batch endpoint unavailable")
	}
	var out []hubspot.Flow
	for _, id := range ids {
		if d, ok := s.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubFlowSource) GetFlow(_ context.Context, id string) (*hubspot.Flow, error) {
	if d, ok := s.details[id]; ok {
		return &d, nil
	}
	return nil, fmt.Errorf("flow %s: %w", id, hubspot.ErrNotFound)
}

func summaries(n int) []hubspot.Flow {
	flows := make([]hubspot.Flow, n)
	for i := range flows {
		flows[i] = hubspot.Flow{ID: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("Flow %d", i)}
	}
	return flows
}

func detailsFor(flows []hubspot.Flow) map[string]hubspot.Flow {
	m := make(map[string]hubspot.Flow, len(flows))
	for _, f := range flows {
		d := f
		d.StartActionID = "a1"
		d.Actions = []hubspot.Action{{ID: "a1", Type: "DELAY"}}
		m[f.ID] = d
	}
	return m
}

func TestWorkflowCache_PaginatesAndMergesDetail(t *testing.T) {
	flows := summaries(150)
	src := &stubFlowSource{
		pages: []hubspot.FlowPage{
			{Results: flows[:100], After: "1"},
			{Results: flows[100:]},
		},
		details: detailsFor(flows),
	}
	c := NewWorkflowCache(src)

	got, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 150 {
		t.Fatalf("expected 150 flows, got %d", len(got))
	}
	for _, f := range got {
		if f.StartActionID != "a1" {
			t.Fatalf("flow %s missing merged detail", f.ID)
		}
	}
	if calls := src.listCalls.Load(); calls != 2 {
		t.Errorf("expected 2 page fetches, got %d", calls)
	}
	// 150 ids at chunk size 100 → 2 batch reads.
	if calls := src.batchCalls.Load(); calls != 2 {
		t.Errorf("expected 2 batch fetches, got %d", calls)
	}
}

func TestWorkflowCache_SingleLoadPerProcess(t *testing.T) {
	flows := summaries(5)
	src := &stubFlowSource{
		pages:   []hubspot.FlowPage{{Results: flows}},
		details: detailsFor(flows),
	}
	c := NewWorkflowCache(src)

	for range 3 {
		if _, err := c.All(context.Background()); err != nil {
			t.Fatalf("All: %v", err)
		}
	}
	if calls := src.listCalls.Load(); calls != 1 {
		t.Errorf("expected exactly 1 list fetch, got %d", calls)
	}
}

func TestWorkflowCache_FailedChunkFallsBackToSummaries(t *testing.T) {
	flows := summaries(150)
	src := &stubFlowSource{
		pages: []hubspot.FlowPage{
			{Results: flows[:100], After: "1"},
			{Results: flows[100:]},
		},
		details: detailsFor(flows),
		// Fail only the second chunk (the one containing f100).
		failBatch: func(ids []string) bool {
			for _, id := range ids {
				if id == "f100" {
					return true
				}
			}
			return false
		},
	}
	c := NewWorkflowCache(src)

	got, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 150 {
		t.Fatalf("expected all 150 flows despite failed chunk, got %d", len(got))
	}

	detailed, summaryOnly := 0, 0
	for _, f := range got {
		if f.StartActionID == "a1" {
			detailed++
		} else {
			summaryOnly++
		}
	}
	if detailed != 100 || summaryOnly != 50 {
		t.Errorf("expected 100 detailed + 50 summary-only, got %d + %d", detailed, summaryOnly)
	}
}

func TestWorkflowCache_GetDirectFetch(t *testing.T) {
	flows := summaries(3)
	src := &stubFlowSource{
		pages:   []hubspot.FlowPage{{Results: flows}},
		details: detailsFor(flows),
	}
	c := NewWorkflowCache(src)

	f, err := c.Get(context.Background(), "f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.ID != "f1" || f.StartActionID != "a1" {
		t.Errorf("unexpected flow %+v", f)
	}
	if calls := src.listCalls.Load(); calls != 0 {
		t.Errorf("direct Get must not populate the collection cache, got %d list calls", calls)
	}

	if _, err := c.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

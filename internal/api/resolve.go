package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkoval/crmscope/internal/catalog"
	"github.com/dkoval/crmscope/internal/hubspot"
	"github.com/dkoval/crmscope/internal/match"
)

// FlowCatalog is the workflow cache surface the API layer needs.
type FlowCatalog interface {
	All(ctx context.Context) ([]hubspot.Flow, error)
	Get(ctx context.Context, id string) (*hubspot.Flow, error)
}

// PipelineCatalog is the pipeline cache surface the API layer needs.
type PipelineCatalog interface {
	All(ctx context.Context, objectType string) ([]hubspot.Pipeline, error)
}

// ResolveFlow finds a workflow by id or fuzzy name. It returns either the
// resolved flow, or (when the best name match is below the confidence
// threshold and other candidates exist) the alternatives the caller should
// surface instead of silently picking a low-confidence winner.
func ResolveFlow(ctx context.Context, flows FlowCatalog, query string) (*hubspot.Flow, []match.Result[hubspot.Flow], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, fmt.Errorf("workflow name or id is required")
	}

	// Numeric input is an id; try the direct path first.
	if isNumeric(query) {
		f, err := flows.Get(ctx, query)
		if err == nil {
			return f, nil, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return nil, nil, err
		}
		// Fall through to name matching.
	}

	all, err := flows.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	results := matchFlows(query, all)
	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no workflow matching %q", query)
	}
	if match.Ambiguous(results, len(all)) {
		if len(results) > match.MaxAlternatives {
			results = results[:match.MaxAlternatives]
		}
		return nil, results, nil
	}
	return &results[0].Item, nil, nil
}

// ResolveStage finds a pipeline by fuzzy name and, when stageQuery is
// non-empty, a stage within it. Ambiguity at either level returns
// alternatives instead of a pick.
type StageResolution struct {
	Pipeline             *hubspot.Pipeline
	Stage                *hubspot.Stage
	PipelineScore        float64
	StageScore           float64
	PipelineAlternatives []match.Result[hubspot.Pipeline]
	StageAlternatives    []match.Result[hubspot.Stage]
}

func ResolveStage(ctx context.Context, pipelines PipelineCatalog, objectType, pipelineQuery, stageQuery string) (*StageResolution, error) {
	all, err := pipelines.All(ctx, objectType)
	if err != nil {
		return nil, err
	}

	pResults := match.Match(pipelineQuery, all, func(p hubspot.Pipeline) string { return p.Label })
	if len(pResults) == 0 {
		return nil, fmt.Errorf("no pipeline matching %q", pipelineQuery)
	}
	if match.Ambiguous(pResults, len(all)) {
		if len(pResults) > match.MaxAlternatives {
			pResults = pResults[:match.MaxAlternatives]
		}
		return &StageResolution{PipelineAlternatives: pResults}, nil
	}

	res := &StageResolution{
		Pipeline:      &pResults[0].Item,
		PipelineScore: pResults[0].Score,
	}
	if stageQuery == "" {
		return res, nil
	}

	sResults := match.Match(stageQuery, res.Pipeline.Stages, func(s hubspot.Stage) string { return s.Label })
	if len(sResults) == 0 {
		return nil, fmt.Errorf("no stage matching %q in pipeline %q", stageQuery, res.Pipeline.Label)
	}
	if match.Ambiguous(sResults, len(res.Pipeline.Stages)) {
		if len(sResults) > match.MaxAlternatives {
			sResults = sResults[:match.MaxAlternatives]
		}
		res.StageAlternatives = sResults
		return res, nil
	}
	res.Stage = &sResults[0].Item
	res.StageScore = sResults[0].Score
	return res, nil
}

func matchFlows(query string, flows []hubspot.Flow) []match.Result[hubspot.Flow] {
	return match.Match(query, flows, func(f hubspot.Flow) string { return f.Name })
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

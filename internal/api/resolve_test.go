package api

import (
	"context"
	"testing"

	"github.com/dkoval/crmscope/internal/hubspot"
)

func TestResolveFlow_NumericID(t *testing.T) {
	flows := &stubFlows{flows: []hubspot.Flow{
		{ID: "101", Name: "Welcome Series"},
		{ID: "102", Name: "Renewal Reminder"},
	}}

	flow, alternatives, err := ResolveFlow(context.Background(), flows, "102")
	if err != nil {
		t.Fatalf("ResolveFlow: %v", err)
	}
	if len(alternatives) != 0 {
		t.Fatalf("unexpected alternatives: %+v", alternatives)
	}
	if flow.Name != "Renewal Reminder" {
		t.Errorf("got %q", flow.Name)
	}
}

func TestResolveFlow_NumericFallsThroughToName(t *testing.T) {
	// The id lookup misses, but a workflow name contains the digits.
	flows := &stubFlows{flows: []hubspot.Flow{
		{ID: "9", Name: "404 Cleanup"},
	}}

	flow, alternatives, err := ResolveFlow(context.Background(), flows, "404")
	if err != nil {
		t.Fatalf("ResolveFlow: %v", err)
	}
	if len(alternatives) != 0 {
		t.Fatalf("unexpected alternatives: %+v", alternatives)
	}
	if flow.ID != "9" {
		t.Errorf("got flow %q", flow.ID)
	}
}

func TestResolveFlow_ConfidentName(t *testing.T) {
	flows := &stubFlows{flows: []hubspot.Flow{
		{ID: "101", Name: "Welcome Series"},
		{ID: "102", Name: "Renewal Reminder"},
	}}

	flow, alternatives, err := ResolveFlow(context.Background(), flows, "welcome")
	if err != nil {
		t.Fatalf("ResolveFlow: %v", err)
	}
	if len(alternatives) != 0 {
		t.Fatalf("unexpected alternatives: %+v", alternatives)
	}
	if flow.ID != "101" {
		t.Errorf("got flow %q", flow.ID)
	}
}

func TestResolveFlow_AmbiguousReturnsAlternatives(t *testing.T) {
	// Low-coverage substring matches score below the confidence threshold.
	flows := &stubFlows{flows: []hubspot.Flow{
		{ID: "1", Name: "Customer Welcome Flow For Trials"},
		{ID: "2", Name: "Partner Welcome Flow For Resellers"},
	}}

	flow, alternatives, err := ResolveFlow(context.Background(), flows, "welcome")
	if err != nil {
		t.Fatalf("ResolveFlow: %v", err)
	}
	if flow != nil {
		t.Fatalf("expected no silent pick, got %q", flow.Name)
	}
	if len(alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(alternatives))
	}
}

func TestResolveFlow_AlternativesCapped(t *testing.T) {
	var all []hubspot.Flow
	names := []string{
		"Customer Welcome Flow For Trials",
		"Partner Welcome Flow For Resellers",
		"Agency Welcome Flow For Contractors",
		"Internal Welcome Flow For Employees",
		"Student Welcome Flow For Campus Users",
		"Vendor Welcome Flow For Suppliers",
		"Investor Welcome Flow For Relations",
	}
	for i, n := range names {
		all = append(all, hubspot.Flow{ID: string(rune('a' + i)), Name: n})
	}
	flows := &stubFlows{flows: all}

	_, alternatives, err := ResolveFlow(context.Background(), flows, "welcome")
	if err != nil {
		t.Fatalf("ResolveFlow: %v", err)
	}
	if len(alternatives) != 5 {
		t.Errorf("alternatives should cap at 5, got %d", len(alternatives))
	}
}

func TestResolveFlow_EmptyQuery(t *testing.T) {
	flows := &stubFlows{}
	if _, _, err := ResolveFlow(context.Background(), flows, "   "); err == nil {
		t.Fatal("expected an error for a blank query")
	}
}

func TestResolveFlow_NoMatch(t *testing.T) {
	flows := &stubFlows{flows: []hubspot.Flow{{ID: "1", Name: "Welcome Series"}}}
	if _, _, err := ResolveFlow(context.Background(), flows, "zzzzzzzz"); err == nil {
		t.Fatal("expected an error when nothing matches")
	}
}

func TestResolveStage_PipelineOnly(t *testing.T) {
	pipelines := &stubPipelines{pipelines: map[string][]hubspot.Pipeline{
		"deals": {
			{ID: "p1", Label: "Sales Pipeline"},
			{ID: "p2", Label: "Support Queue"},
		},
	}}

	res, err := ResolveStage(context.Background(), pipelines, "deals", "Sales Pipeline", "")
	if err != nil {
		t.Fatalf("ResolveStage: %v", err)
	}
	if res.Pipeline == nil || res.Pipeline.ID != "p1" {
		t.Fatalf("got %+v", res)
	}
	if res.Stage != nil {
		t.Errorf("no stage was requested, got %+v", res.Stage)
	}
}

func TestResolveStage_TwoLevel(t *testing.T) {
	pipelines := &stubPipelines{pipelines: map[string][]hubspot.Pipeline{
		"deals": {
			{ID: "p1", Label: "Sales Pipeline", Stages: []hubspot.Stage{
				{ID: "s1", Label: "New"},
				{ID: "s2", Label: "Qualified"},
			}},
		},
	}}

	res, err := ResolveStage(context.Background(), pipelines, "deals", "sales pipeline", "qualified")
	if err != nil {
		t.Fatalf("ResolveStage: %v", err)
	}
	if res.Pipeline.ID != "p1" || res.Stage == nil || res.Stage.ID != "s2" {
		t.Fatalf("got %+v", res)
	}
	if res.StageScore < 0.7 {
		t.Errorf("case-insensitive stage match should be confident, score %v", res.StageScore)
	}
}

func TestResolveStage_AmbiguousStage(t *testing.T) {
	pipelines := &stubPipelines{pipelines: map[string][]hubspot.Pipeline{
		"deals": {
			{ID: "p1", Label: "Sales Pipeline", Stages: []hubspot.Stage{
				{ID: "s1", Label: "Negotiation Review Call Stage"},
				{ID: "s2", Label: "Negotiation Review Done Stage"},
			}},
		},
	}}

	res, err := ResolveStage(context.Background(), pipelines, "deals", "Sales Pipeline", "review")
	if err != nil {
		t.Fatalf("ResolveStage: %v", err)
	}
	if res.Stage != nil {
		t.Fatalf("expected no silent stage pick, got %+v", res.Stage)
	}
	if len(res.StageAlternatives) != 2 {
		t.Errorf("expected 2 stage alternatives, got %d", len(res.StageAlternatives))
	}
}

func TestResolveStage_NoPipelineMatch(t *testing.T) {
	pipelines := &stubPipelines{pipelines: map[string][]hubspot.Pipeline{
		"deals": {{ID: "p1", Label: "Sales Pipeline"}},
	}}

	if _, err := ResolveStage(context.Background(), pipelines, "deals", "zzzzzzzz", ""); err == nil {
		t.Fatal("expected an error when no pipeline matches")
	}
}

func TestIsNumeric(t *testing.T) {
	for s, want := range map[string]bool{
		"123":  true,
		"0":    true,
		"":     false,
		"12a":  false,
		"-5":   false,
		"1.5":  false,
		"١٢٣":  false, // only ASCII digits count as ids
		"九":    false,
		" 12 ": false,
	} {
		if got := isNumeric(s); got != want {
			t.Errorf("isNumeric(%q) = %v, want %v", s, got, want)
		}
	}
}

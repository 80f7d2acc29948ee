package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RunsMigrations(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 || versions[0] != 1 {
		t.Errorf("expected migration 1 applied, got %v", versions)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTestStore(t)

	before, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	after, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(before) != len(after) {
		t.Errorf("re-running migrate changed versions: %v -> %v", before, after)
	}
}

func TestReportRoundTrip(t *testing.T) {
	s := openTestStore(t)

	r := Report{
		ID:        "r1",
		Kind:      "email_engagement",
		Subject:   "Last 30 days",
		Body:      "Campaign   Sent  Opens\nLaunch     120   45",
		CreatedAt: time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	}
	if err := s.SaveReport(r); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := s.GetReport("r1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Kind != r.Kind || got.Subject != r.Subject || got.Body != r.Body {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetReport("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListReports_NewestFirstWithoutBody(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		err := s.SaveReport(Report{
			ID:        id,
			Kind:      "page_views",
			Subject:   "contact " + id,
			Body:      "full body",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveReport %s: %v", id, err)
		}
	}

	reports, err := s.ListReports(2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != "r3" || reports[1].ID != "r2" {
		t.Errorf("wrong order: %s, %s", reports[0].ID, reports[1].ID)
	}
	if reports[0].Body != "" {
		t.Errorf("listing should omit the body, got %q", reports[0].Body)
	}
}

func TestToolCallLog(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	calls := []ToolCall{
		{ID: "c1", Tool: "list_pipelines", ArgsJSON: `{}`, OK: true, CreatedAt: base},
		{ID: "c2", Tool: "render_workflow", ArgsJSON: `{"workflow":"Welcome"}`, OK: false, CreatedAt: base.Add(time.Minute)},
	}
	for _, tc := range calls {
		if err := s.LogToolCall(tc); err != nil {
			t.Fatalf("LogToolCall %s: %v", tc.ID, err)
		}
	}

	got, err := s.RecentToolCalls(10)
	if err != nil {
		t.Fatalf("RecentToolCalls: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(got))
	}
	if got[0].ID != "c2" || got[0].OK {
		t.Errorf("newest first with ok flag expected, got %+v", got[0])
	}
	if got[1].Tool != "list_pipelines" || got[1].ArgsJSON != `{}` {
		t.Errorf("got %+v", got[1])
	}
}

func TestLogToolCall_DefaultsCreatedAt(t *testing.T) {
	s := openTestStore(t)

	if err := s.LogToolCall(ToolCall{ID: "c1", Tool: "list_workflows", ArgsJSON: `{}`, OK: true}); err != nil {
		t.Fatalf("LogToolCall: %v", err)
	}
	got, err := s.RecentToolCalls(1)
	if err != nil {
		t.Fatalf("RecentToolCalls: %v", err)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at should default to now")
	}
}

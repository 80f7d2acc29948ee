package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkoval/crmscope/internal/storage"
)

// AppDeps holds dependencies for the HTTP management handler.
type AppDeps struct {
	Store *storage.Store
	Token string
}

// NewAppHandler builds the local management surface: an unauthenticated
// health probe plus bearer-auth'd report archive browsing.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/reports", handleListReports(deps))
		r.Get("/reports/{id}", handleGetReport(deps))
		r.Get("/tool-calls", handleListToolCalls(deps))
	})

	return r
}

func handleListReports(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 500 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be an integer in [1,500]")
				return
			}
			limit = n
		}

		reports, err := deps.Store.ListReports(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal_error", "listing reports: %v", err)
			return
		}

		type reportSummary struct {
			ID        string `json:"id"`
			Kind      string `json:"kind"`
			Subject   string `json:"subject"`
			CreatedAt string `json:"created_at"`
		}
		out := make([]reportSummary, len(reports))
		for i, rep := range reports {
			out[i] = reportSummary{
				ID:        rep.ID,
				Kind:      rep.Kind,
				Subject:   rep.Subject,
				CreatedAt: rep.CreatedAt.Format(time.RFC3339),
			}
		}
		writeJSON(w, out)
	}
}

func handleGetReport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rep, err := deps.Store.GetReport(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "no report with id %s", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal_error", "getting report: %v", err)
			return
		}
		writeJSON(w, map[string]any{
			"id":         rep.ID,
			"kind":       rep.Kind,
			"subject":    rep.Subject,
			"body":       rep.Body,
			"created_at": rep.CreatedAt.Format(time.RFC3339),
		})
	}
}

func handleListToolCalls(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls, err := deps.Store.RecentToolCalls(100)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "internal_error", "listing tool calls: %v", err)
			return
		}

		type callSummary struct {
			ID        string `json:"id"`
			Tool      string `json:"tool"`
			Args      string `json:"args"`
			OK        bool   `json:"ok"`
			CreatedAt string `json:"created_at"`
		}
		out := make([]callSummary, len(calls))
		for i, c := range calls {
			out[i] = callSummary{
				ID:        c.ID,
				Tool:      c.Tool,
				Args:      c.ArgsJSON,
				OK:        c.OK,
				CreatedAt: c.CreatedAt.Format(time.RFC3339),
			}
		}
		writeJSON(w, out)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

func httpError(w http.ResponseWriter, status int, code, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"type":    code,
			"message": fmt.Sprintf(format, args...),
		},
	})
}

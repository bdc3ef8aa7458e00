package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/onnwee/moviebot/db"
)

// Handlers holds dependencies for the ops endpoints.
type Handlers struct {
	db      *sql.DB
	store   *db.Store
	started time.Time
}

// NewHandlers creates the handler set for the given database.
func NewHandlers(database *sql.DB) *Handlers {
	return &Handlers{db: database, store: &db.Store{DB: database}, started: time.Now()}
}

// HandleHealthz responds to liveness probe requests by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests. Ready means the database
// answers and the schema is present.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.db.PingContext(r.Context()) }},
		{"schema", func() error {
			var n int
			return h.db.QueryRowContext(r.Context(),
				"SELECT COUNT(*) FROM user_stats").Scan(&n)
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// statusResponse is the /status payload.
type statusResponse struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	TotalSearches int64            `json:"total_searches"`
	UniqueUsers   int64            `json:"unique_users"`
	TopSearches   []topSearchEntry `json:"top_searches"`
}

type topSearchEntry struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// HandleStatus reports aggregate search activity and the most popular queries.
// Analytics only; nothing here is on the lookup hot path.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := statusResponse{UptimeSeconds: int64(time.Since(h.started).Seconds())}

	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&resp.TotalSearches); err != nil {
		http.Error(w, "status query failed", http.StatusInternalServerError)
		return
	}
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_stats`).Scan(&resp.UniqueUsers); err != nil {
		http.Error(w, "status query failed", http.StatusInternalServerError)
		return
	}
	top, err := h.store.TopSearches(ctx, 10)
	if err != nil {
		http.Error(w, "status query failed", http.StatusInternalServerError)
		return
	}
	resp.TopSearches = make([]topSearchEntry, 0, len(top))
	for _, f := range top {
		resp.TopSearches = append(resp.TopSearches, topSearchEntry{Query: f.Query, Count: f.Count})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

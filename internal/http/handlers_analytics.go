package http

import (
	"net/http"
	"time"
)

// handleAnalytics returns the full chart payload in one response: the
// trailing months series, the current-month category breakdown, and the
// per-category budget progress.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analytics.Summary(r.Context(), userIDFrom(r), time.Now().UTC())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Analytics", viewAnalytics(summary))
}

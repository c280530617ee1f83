package api

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"aura_backend/core"
	"aura_backend/db"
	"aura_backend/metrics"
)

// MsgHistoryDisabled is returned by the history endpoints when no history
// store is configured.
const MsgHistoryDisabled = "Extraction history is disabled"

type listMetadata struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
}

// handleListExtractions handles GET /api/v1/extractions?limit=N.
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, MsgHistoryDisabled)
		return
	}

	limit := s.config.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	runs, err := s.deps.History.RecentRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list extraction runs",
			zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	if runs == nil {
		runs = []db.ExtractionRun{}
	}
	writeData(w, runs, listMetadata{Count: len(runs), Limit: limit})
}

// handleGetExtraction handles GET /api/v1/extractions/{id}.
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, MsgHistoryDisabled)
		return
	}

	run, err := s.deps.History.GetRun(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, db.ErrRunNotFound):
		writeError(w, http.StatusNotFound, MsgNotFound)
		return
	case err != nil:
		s.logger.Error("failed to load extraction run",
			zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	writeData(w, run, nil)
}

type statsResponse struct {
	Health     string                   `json:"health,omitempty"`
	Version    string                   `json:"version"`
	Uptime     string                   `json:"uptime,omitempty"`
	UptimeSecs float64                  `json:"uptimeSecs,omitempty"`
	Documents  *metrics.DocumentMetrics `json:"documents,omitempty"`
	History    map[string]int           `json:"history,omitempty"`
}

// handleStats handles GET /api/v1/stats: in-process counters since start
// plus persisted run counts by status.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Version: s.config.Version}

	if store := s.store(); store != nil {
		status := store.GetSystemStatus()
		docs := store.GetDocumentMetrics()
		resp.Health = status.Health
		resp.Uptime = core.FormatDuration(status.Uptime)
		resp.UptimeSecs = status.Uptime.Seconds()
		resp.Documents = &docs
	}

	if s.deps.History != nil {
		counts, err := s.deps.History.CountByStatus(r.Context())
		if err != nil {
			s.logger.Warn("failed to count extraction runs",
				zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		} else {
			resp.History = counts
		}
	}

	writeData(w, resp, nil)
}

// Package api serves negotiation sessions and saved reports over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/pitchroom/application"
	"github.com/felixgeelhaar/pitchroom/domain/analytics"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	infraanalytics "github.com/felixgeelhaar/pitchroom/infrastructure/analytics"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Handler routes the HTTP API.
type Handler struct {
	manager *application.Manager
	store   report.Store
	mux     *http.ServeMux
}

// NewHandler creates the API over manager. store may be nil, in which
// case the /reports routes answer 404.
func NewHandler(manager *application.Manager, store report.Store) *Handler {
	h := &Handler{
		manager: manager,
		store:   store,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("POST /sessions", h.startSession)
	h.mux.HandleFunc("GET /sessions/{id}", h.sessionStatus)
	h.mux.HandleFunc("POST /sessions/{id}/turns", h.processTurn)
	h.mux.HandleFunc("GET /sessions/{id}/report", h.sessionReport)
	h.mux.HandleFunc("POST /sessions/{id}/end", h.endSession)
	h.mux.HandleFunc("DELETE /sessions/{id}", h.removeSession)
	h.mux.HandleFunc("GET /reports", h.listReports)
	h.mux.HandleFunc("GET /reports/stats", h.reportStats)
	h.mux.HandleFunc("GET /reports/{id}", h.getReport)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Welcome   string `json:"welcome"`
}

type turnRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	Entries []application.Entry `json:"entries"`
	Phase   negotiation.Phase   `json:"phase"`
	Active  bool                `json:"active"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.manager.Len()})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	s, welcome, err := h.manager.Start(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{SessionID: s.ID(), Welcome: welcome})
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Status())
}

func (h *Handler) processTurn(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req turnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	entries, err := s.ProcessTurn(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{Entries: entries, Phase: s.Phase(), Active: s.IsActive()})
}

func (h *Handler) sessionReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	format := formatParam(r)
	data, err := s.ExportReport(format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeExport(w, format, data)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	rep, err := h.manager.End(r.Context(), r.PathValue("id"))
	if err != nil && rep == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		// The session ended; only saving failed.
		logging.Error().
			Add(logging.SessionID(rep.SessionID)).
			Add(logging.ErrorField(err)).
			Msg("failed to save report on end")
	}
	writeJSON(w, http.StatusOK, rep)
}

// removeSession ends a session if needed and drops it from the manager.
func (h *Handler) removeSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.manager.Remove(r.Context(), id); err != nil {
		if errors.Is(err, application.ErrSessionNotFound) {
			writeError(w, err)
			return
		}
		logging.Error().
			Add(logging.SessionID(id)).
			Add(logging.ErrorField(err)).
			Msg("failed to save report on remove")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no report store configured"})
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	reports, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]reportItem, len(reports))
	for i, rep := range reports {
		items[i] = summarize(rep)
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": items})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no report store configured"})
		return
	}
	rep, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	format := formatParam(r)
	data, err := report.Export(rep, format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeExport(w, format, data)
}

// Stats is the body of GET /reports/stats.
type Stats struct {
	Outcomes analytics.OutcomeStat   `json:"outcomes"`
	Phases   []analytics.PhaseStat   `json:"phases"`
	Roles    []analytics.RoleStat    `json:"roles"`
	Trend    []analytics.OutcomeStat `json:"trend,omitempty"`
}

func (h *Handler) reportStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no report store configured"})
		return
	}

	filter, err := parseStatsFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	stats, err := CollectStats(r.Context(), infraanalytics.NewAggregator(h.store), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CollectStats runs every analytics query for filter. Trend is only
// filled when filter.GroupBy is set.
func CollectStats(ctx context.Context, a analytics.Analytics, filter analytics.Filter) (Stats, error) {
	var s Stats
	var err error
	if s.Outcomes, err = a.Outcomes(ctx, filter); err != nil {
		return s, err
	}
	if s.Phases, err = a.PhaseDistribution(ctx, filter); err != nil {
		return s, err
	}
	if s.Roles, err = a.RoleSatisfaction(ctx, filter); err != nil {
		return s, err
	}
	if filter.GroupBy != analytics.GroupByNone {
		if s.Trend, err = a.Trend(ctx, filter); err != nil {
			return s, err
		}
	}
	return s, nil
}

func parseStatsFilter(r *http.Request) (analytics.Filter, error) {
	q := r.URL.Query()
	f := analytics.Filter{GroupBy: analytics.GroupBy(q.Get("group_by"))}
	if !f.GroupBy.IsValid() {
		return f, errors.New("group_by must be day, week or month")
	}
	for name, dst := range map[string]*time.Time{"from": &f.FromTime, "to": &f.ToTime} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return f, errors.New(name + " must be an RFC 3339 time")
			}
			*dst = t
		}
	}
	if v := q.Get("session_id"); v != "" {
		f.SessionIDs = []string{v}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}

// reportItem is the listing form of a saved report.
type reportItem struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Date       time.Time `json:"date"`
	DealClosed bool      `json:"deal_closed"`
	Grade      string    `json:"grade"`
	Percentage float64   `json:"percentage"`
}

func summarize(r *report.Report) reportItem {
	return reportItem{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Date:       r.SessionInfo.Date,
		DealClosed: r.NegotiationResult.DealClosed,
		Grade:      r.PerformanceEvaluation.Grade,
		Percentage: r.PerformanceEvaluation.Percentage,
	}
}

func parseListFilter(r *http.Request) (report.ListFilter, error) {
	q := r.URL.Query()
	f := report.ListFilter{SessionID: q.Get("session_id")}

	if v := q.Get("closed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("closed must be a boolean")
		}
		f.DealClosed = &b
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("from must be an RFC 3339 time")
		}
		f.FromTime = t
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return f, errors.New(name + " must be a non-negative integer")
			}
			*dst = n
		}
	}
	return f, nil
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return string(report.FormatJSON)
}

func writeExport(w http.ResponseWriter, format string, data []byte) {
	ct := "application/json"
	if f, _ := report.ParseFormat(format); f == report.FormatText {
		ct = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Add(logging.Component("api")).Add(logging.ErrorField(err)).Msg("failed to write response")
	}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, application.ErrSessionNotFound), errors.Is(err, report.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, application.ErrSessionInactive):
		status = http.StatusConflict
	case errors.Is(err, application.ErrTurnAbandoned):
		status = http.StatusRequestTimeout
	case errors.Is(err, report.ErrUnsupportedFormat), errors.Is(err, report.ErrInvalidReportID):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logging.Error().Add(logging.Component("api")).Add(logging.ErrorField(err)).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// handlePortfolio handles GET /api/portfolio — the last persisted snapshot,
// reduced to its whitelisted client-facing form.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.portfolio.GetSnapshot(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteErrorWithCode(w, http.StatusNotFound, "No snapshot yet, trigger a refresh", "no_snapshot")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load snapshot")
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}

	// Clients polling the read endpoint can see when a refresh is due
	// without parsing the snapshot timestamp.
	if !common.IsFresh(snapshot.FetchedAt, common.FreshnessSnapshot) {
		w.Header().Set("X-Snapshot-Stale", "true")
	}

	WriteJSON(w, http.StatusOK, snapshot.ToResponse())
}

// handleRefresh handles POST /api/portfolio/refresh?budget=1000.
// A refresh always yields a structurally valid snapshot; degraded stages are
// reported in its status rather than as an HTTP error.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	budget := 0.0
	if raw := r.URL.Query().Get("budget"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "budget must be a non-negative number")
			return
		}
		budget = parsed
	}

	snapshot := s.portfolio.Refresh(r.Context(), userID(r), budget)
	WriteJSON(w, http.StatusOK, snapshot.ToResponse())
}

type credentialsRequest struct {
	Service string `json:"service"`
	APIKey  string `json:"api_key"`
}

// handleCredentials handles PUT /api/credentials — stores a sealed broker
// API key for the requesting user.
func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut, http.MethodPost) {
		return
	}

	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Service == "" || req.APIKey == "" {
		WriteError(w, http.StatusBadRequest, "service and api_key are required")
		return
	}

	if err := s.store.SetUserAPIKey(r.Context(), userID(r), req.Service, req.APIKey); err != nil {
		if errors.Is(err, interfaces.ErrNotConfigured) {
			WriteErrorWithCode(w, http.StatusServiceUnavailable, "Credential store has no sealing key configured", "no_credential_key")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to store credential")
		WriteError(w, http.StatusInternalServerError, "Failed to store credential")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

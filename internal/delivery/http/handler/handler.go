package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/profile-collector/internal/delivery/http/request"
	"github.com/user/profile-collector/internal/delivery/http/response"
	"github.com/user/profile-collector/internal/repository"
	"github.com/user/profile-collector/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes caps a submit request body.
const maxBodyBytes = 1 << 20

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	runManager usecase.RunManager
	checks     map[string]HealthCheck
	logger     *zap.Logger
}

func NewHandler(runManager usecase.RunManager, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		runManager: runManager,
		checks:     checks,
		logger:     logger,
	}
}

func (h *Handler) HandleSubmitRun(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitRunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID, err := h.runManager.Submit(r.Context(), usecase.SubmitRunRequest{
		SearchURL: req.SearchURL,
		Force:     req.Force,
		Limits:    req.Limits(),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidSearchURL), errors.Is(err, usecase.ErrInvalidLimits):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, usecase.ErrSearchRecentlyCollected):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("Failed to submit run", zap.String("search_url", req.SearchURL), zap.Error(err))
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitRunResponse{
		Status:  "success",
		Message: "Search submitted for collection",
		RunID:   runID,
	})
}

func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.runManager.GetRun(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewRunResponse(run))
}

func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profiles, err := h.runManager.ListProfiles(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ProfilesResponse{
		RunID:    id,
		Count:    len(profiles),
		Profiles: profiles,
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		status  = make(map[string]string, len(h.checks))
		healthy = true
	)
	for name, check := range h.checks {
		g.Go(func() error {
			err := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				healthy = false
				status[name] = "unhealthy"
				h.logger.Error("Health check failed", zap.String("service", name), zap.Error(err))
				return nil
			}
			status[name] = "healthy"
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		h.writeJSONError(w, "Run not found", http.StatusNotFound)
		return
	}
	h.logger.Error("Failed to look up run", zap.String("run_id", id), zap.Error(err))
	h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

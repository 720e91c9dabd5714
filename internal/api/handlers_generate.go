package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gnkm/mdstruct/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type generateRequest struct {
	Backend     string   `json:"backend"`
	Model       string   `json:"model"`
	System      string   `json:"system"`
	User        string   `json:"user"`
	Temperature *float64 `json:"temperature"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.User == "" {
		jsonError(w, "user prompt is required", http.StatusBadRequest)
		return
	}

	backend := req.Backend
	if backend == "" {
		backend = s.cfg.DefaultBackend
	}
	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	temperature := s.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	job, err := s.orchestrator.Submit(backend, model, req.System, req.User, temperature)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/generate/%s/status", job.ID),
	})
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"backend":  snap.Backend,
		"model":    snap.Model,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

// handleGenerateResult returns the canonical document for a completed job.
// Unfinished jobs answer 409 so pollers keep waiting, failed jobs answer 422
// with the collected attempt errors.
func (s *Server) handleGenerateResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	switch snap.Status {
	case pipeline.StatusCompleted:
		json.NewEncoder(w).Encode(map[string]any{
			"job_id":     snap.ID,
			"status":     snap.Status,
			"document":   json.RawMessage(snap.Canonical),
			"stats":      snap.Stats,
			"structured": snap.Structured,
		})
	case pipeline.StatusFailed:
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"phase":  snap.Phase,
			"errors": snap.Progress.Errors,
		})
	default:
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"phase":  snap.Phase,
		})
	}
}

package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ReviewSheet/internal/core"
	"github.com/JonMunkholm/ReviewSheet/internal/logging"
	"github.com/JonMunkholm/ReviewSheet/internal/web/templates"
)

// RunResponse acknowledges a started job.
type RunResponse struct {
	JobID     string      `json:"job_id"`
	Status    core.Status `json:"status"`
	StatusURL string      `json:"status_url"`
}

// CancelResponse acknowledges a cancellation request.
type CancelResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// handleStatusPage renders the HTML overview of stages and jobs.
func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	page := templates.StatusPage(s.service.Stages(), s.service.LockStatus(), s.service.List())
	templ.Handler(page).ServeHTTP(w, r)
}

// handleRun starts a pipeline job. An empty body runs every stage over
// every file.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req core.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, r, errors.Join(core.ErrInvalidRequest, err), http.StatusBadRequest)
		return
	}

	id, err := s.service.Start(r.Context(), req)
	if err != nil {
		s.respondJobError(w, r, err, statusFor(err), id)
		return
	}

	logging.WithFields(r.Context(), "job_id", id).Info("job accepted")
	writeJSON(w, http.StatusAccepted, RunResponse{
		JobID:     id,
		Status:    core.StatusInProgress,
		StatusURL: "/api/pipeline/status/" + id,
	})
}

// handleListJobs returns every known job, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.service.List()
	if jobs == nil {
		jobs = []core.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// handleJobStatus returns one job snapshot.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Status(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancel asks a running job to stop at its next safe point.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	if err := s.service.RequestCancel(id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	job, _ := s.service.Status(id)
	writeJSON(w, http.StatusAccepted, CancelResponse{JobID: id, Message: job.Message})
}

// handleLockStatus reports which job holds the run lock.
func (s *Server) handleLockStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LockStatus())
}

// handleResults serves a result archive from the processed directory.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.service.ResultsPath(name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeFile(w, r, path)
}

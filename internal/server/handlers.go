package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/haskel/bigo/internal/complexity"
	"github.com/haskel/bigo/internal/executor"
	"github.com/haskel/bigo/internal/report"
	"github.com/haskel/bigo/internal/server/middleware"
	"github.com/haskel/bigo/internal/storage"
)

const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CandidatesResponse struct {
	Candidates []string `json:"candidates"`
}

type RunsResponse struct {
	Labels []string `json:"labels"`
}

type RunListResponse struct {
	Label   string   `json:"label"`
	Records []string `json:"records"`
}

// ComplexityRequest asks for one computation. Zero budgets select the
// configured defaults; an empty name defaults to the candidate.
type ComplexityRequest struct {
	Name         string `json:"name"`
	Candidate    string `json:"candidate"`
	BudgetMS     int    `json:"budget_ms"`
	CallBudgetMS int    `json:"call_budget_ms"`
	Expected     string `json:"expected"`
}

// ComplexityResponse carries the summary line as message and the run
// record as result.
type ComplexityResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  *storage.Record `json:"result,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := InfoResponse{
		Name:    "bigo",
		Version: s.version,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, CandidatesResponse{Candidates: executor.Candidates()})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		middleware.Error(w, http.StatusNotFound, "run export is disabled")
		return
	}

	labels, err := s.store.Labels()
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		middleware.Error(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	s.writeJSON(w, http.StatusOK, RunsResponse{Labels: labels})
}

func (s *Server) handleRunList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		middleware.Error(w, http.StatusNotFound, "run export is disabled")
		return
	}

	label := r.PathValue("label")
	names, err := s.store.List(label)
	if err != nil {
		s.logger.Error("failed to list records", "label", label, "error", err)
		middleware.Error(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	s.writeJSON(w, http.StatusOK, RunListResponse{Label: label, Records: names})
}

func (s *Server) handleRunRecord(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		middleware.Error(w, http.StatusNotFound, "run export is disabled")
		return
	}

	rec, err := s.store.Load(r.PathValue("label"), r.PathValue("file"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.Error(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.Error("failed to load record", "error", err)
		middleware.Error(w, http.StatusInternalServerError, "failed to load record")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleComplexity(w http.ResponseWriter, r *http.Request) {
	var req ComplexityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		middleware.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Candidate == "" {
		middleware.Error(w, http.StatusBadRequest, "candidate field is required")
		return
	}
	if req.Name == "" {
		req.Name = req.Candidate
	}

	candidate, err := executor.Lookup(req.Candidate)
	if err != nil {
		middleware.Error(w, http.StatusNotFound, err.Error())
		return
	}

	cfg, err := s.engineConfig(req)
	if err != nil {
		middleware.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var summary bytes.Buffer
	opts := []complexity.Option{complexity.WithReporter(report.New(&summary, false))}
	if s.store != nil && s.config.Export.Enabled {
		opts = append(opts, complexity.WithExporter(s.store))
	}

	engine, err := complexity.New(cfg, s.runner, s.logger, opts...)
	if err != nil {
		middleware.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	// A run may legitimately outlast the server's default write timeout.
	deadline := time.Now().Add(engine.Config().TotalBudget*2 + writeSlack)
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil {
		s.logger.Debug("cannot extend write deadline", "error", err)
	}

	if s.host != nil {
		s.host.Check()
	}

	res, err := engine.Compute(r.Context(), req.Name, candidate, req.Expected)
	resp := ComplexityResponse{
		Message: strings.TrimSpace(summary.String()),
		Result:  storage.NewRecord(res, time.Now()),
	}
	if err != nil {
		resp.Status = statusError
		resp.Message = err.Error()
		s.writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp.Status = statusSuccess
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) engineConfig(req ComplexityRequest) (complexity.Config, error) {
	if req.BudgetMS < 0 || req.CallBudgetMS < 0 {
		return complexity.Config{}, fmt.Errorf("budgets must not be negative")
	}

	cfg, err := s.config.Engine()
	if err != nil {
		return complexity.Config{}, err
	}
	if req.BudgetMS > 0 {
		cfg.TotalBudget = time.Duration(req.BudgetMS) * time.Millisecond
	}
	if req.CallBudgetMS > 0 {
		cfg.CallBudget = time.Duration(req.CallBudgetMS) * time.Millisecond
	}
	return cfg, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}

package server

import (
	"net/http"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /candidates", s.handleCandidates)
	mux.HandleFunc("GET /runs", s.handleRuns)
	mux.HandleFunc("GET /runs/{label}", s.handleRunList)
	mux.HandleFunc("GET /runs/{label}/{file}", s.handleRunRecord)
	mux.HandleFunc("POST /complexity", s.handleComplexity)

	return mux
}

// Package httpapi exposes the benchmark core over HTTP for frontends
// that render models, progress, and results. The core emits values; the
// frontend renders them.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sumbench/internal/benchmark"
	"sumbench/internal/dataset"
	"sumbench/internal/manager"
	"sumbench/internal/pipeline"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 4 << 20

// Server wires the manager, registry, and runner into an HTTP surface.
type Server struct {
	mgr *manager.Manager
	reg *registry.Registry
	log zerolog.Logger
}

// NewServer builds the HTTP layer over an already-constructed manager.
func NewServer(mgr *manager.Manager, reg *registry.Registry, log zerolog.Logger) *Server {
	return &Server{mgr: mgr, reg: reg, log: log}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	MountSwagger(r)

	r.Get("/models", s.handleModels)
	r.Get("/status", s.handleStatus)
	r.Post("/load", s.handleLoad)
	r.Post("/unload", s.handleUnload)
	r.Post("/summarize", s.handleSummarize)
	r.Post("/benchmark", s.handleBenchmark)
	return r
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	f := registry.Filter{
		OnlyAvailable: r.URL.Query().Get("available") == "true",
		Size:          types.SizeClass(r.URL.Query().Get("size")),
	}
	writeJSON(w, map[string]any{"models": s.mgr.ListModels(f)})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.mgr.Status())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h, err := s.mgr.RequestLoad(r.Context(), req.Model)
	if err != nil {
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"model": h.ModelID(), "footprint_mb": h.FootprintMB()})
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.mgr.Unload(req.Model); err != nil {
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"model": req.Model, "state": string(manager.PhaseUnloaded)})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req types.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.pipelineFor(r, req.Model)
	if err != nil {
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	res, err := p.Summarize(r.Context(), types.SummarizationRequest{
		Text:              req.Text,
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
		TopP:              req.TopP,
		ExplicitMaxTokens: req.MaxTokens != 0,
	})
	if err != nil {
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req types.BenchmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.pipelineFor(r, req.Model)
	if err != nil {
		writeJSONError(w, errorStatus(err), err.Error())
		return
	}
	samples := req.Samples
	if len(samples) == 0 {
		samples = dataset.Fixtures(req.Limit)
	} else if req.Limit > 0 && req.Limit < len(samples) {
		samples = samples[:req.Limit]
	}
	runner := benchmark.NewRunner(s.log)
	report, err := runner.Run(r.Context(), p, samples)
	if err != nil {
		// Fail-fast: surface the error with the completed prefix.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(errorStatus(err))
		_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error(), "partial": report})
		return
	}
	writeJSON(w, report)
}

// pipelineFor loads the model if needed and binds a pipeline to it.
func (s *Server) pipelineFor(r *http.Request, modelID string) (*pipeline.Pipeline, error) {
	if strings.TrimSpace(modelID) == "" {
		modelID = registry.DefaultModelID
	}
	h, err := s.mgr.RequestLoad(r.Context(), modelID)
	if err != nil {
		return nil, err
	}
	return pipeline.New(h, pipeline.WithLogger(s.log))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

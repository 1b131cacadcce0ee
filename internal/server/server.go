// Package server implements the bikefit HTTP API.
//
// The API exposes the same load → compute → render pipeline as the CLI plus
// a bike library backed by a store.Store. Responses are JSON except for
// rendered artifacts, which are returned with their native content type.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/cschone/bikefit/pkg/errors"
	"github.com/cschone/bikefit/pkg/frame"
	"github.com/cschone/bikefit/pkg/pipeline"
	"github.com/cschone/bikefit/pkg/store"
)

// Config configures the API server.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger
}

// Server routes API requests to the pipeline and the bike store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}

	s := &Server{
		runner: runner,
		store:  st,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Route("/bikes", func(r chi.Router) {
			r.Get("/", s.handleListBikes)
			r.Post("/", s.handleCreateBike)
			r.Get("/{id}", s.handleGetBike)
			r.Put("/{id}", s.handleUpdateBike)
			r.Delete("/{id}", s.handleDeleteBike)
			r.Get("/{id}/layout", s.handleBikeLayout)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout computes frame layouts from the posted pipeline options.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	opts.SpecPaths = nil // the API never reads server-side files
	opts.Logger = s.logger

	specs, rider, err := s.runner.Load(opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layouts, err := s.runner.Compute(r.Context(), specs, rider, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"layouts": layouts})
}

// handleRender runs the full pipeline and returns the first requested
// artifact with its native content type.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	opts.SpecPaths = nil
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := pipeline.FormatSVG
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	data, ok := result.Artifacts[format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInternal, "artifact missing for format %s", format))
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Bike Library
// =============================================================================

// bikeRequest is the POST/PUT body for the bike library.
type bikeRequest struct {
	Spec  frame.BicycleSpec `json:"spec"`
	Rider *frame.RiderSpec  `json:"rider,omitempty"`
}

func (s *Server) handleListBikes(w http.ResponseWriter, r *http.Request) {
	bikes, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bikes": bikes})
}

func (s *Server) handleCreateBike(w http.ResponseWriter, r *http.Request) {
	var req bikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	if err := req.Spec.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Rider != nil {
		if err := req.Rider.Validate(); err != nil {
			s.writeError(w, err)
			return
		}
	}

	bike := store.NewBike(req.Spec, req.Rider)
	if err := s.store.Put(r.Context(), bike); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bike)
}

func (s *Server) handleGetBike(w http.ResponseWriter, r *http.Request) {
	bike, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bike)
}

func (s *Server) handleUpdateBike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "invalid bike id: %s", id))
		return
	}

	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req bikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	if err := req.Spec.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	existing.Spec = req.Spec
	existing.Rider = req.Rider
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(r.Context(), existing); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteBike(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBikeLayout computes the layout of a stored bike.
func (s *Server) handleBikeLayout(w http.ResponseWriter, r *http.Request) {
	bike, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	layouts, err := s.runner.Compute(r.Context(), []frame.BicycleSpec{bike.Spec}, bike.Rider, pipeline.Options{Logger: s.logger})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layouts[0])
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidSpec, errors.ErrCodeInvalidFormat,
		errors.ErrCodeMissingField, errors.ErrCodeInvalidGeometry:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

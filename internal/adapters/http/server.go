// Package http exposes the console over HTTP: dispatch, catalog,
// variable pool, and transcript, plus Prometheus metrics and the
// embedded OpenAPI document.
package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/series"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the embedded API document.
func OpenAPISpec() []byte {
	return openAPISpec
}

// Server serves the console surface.
type Server struct {
	dispatcher *dispatch.Dispatcher
	cat        *catalog.Catalog
	pool       *pool.Pool
	rec        *transcript.Recorder
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the chi router over the console components.
func NewHandler(d *dispatch.Dispatcher, cat *catalog.Catalog, p *pool.Pool, rec *transcript.Recorder, opts ...Option) http.Handler {
	s := &Server{
		dispatcher: d,
		cat:        cat,
		pool:       p,
		rec:        rec,
		metrics:    NewMetrics(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/dispatch", s.handleDispatch)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/variables", s.handleVariables)
	r.Get("/variables/{id}", s.handleVariable)
	r.Get("/transcript", s.handleTranscript)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openAPISpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return r
}

// DispatchRequest is the POST /dispatch body.
type DispatchRequest struct {
	Op        domain.OpID      `json:"op"`
	Selection domain.Selection `json:"selection"`

	// Choices configures a statistic action; ignored otherwise.
	Choices map[string]any `json:"choices,omitempty"`
}

// DispatchResponse reports the outcome of one dispatch.
type DispatchResponse struct {
	Op      domain.OpID `json:"op"`
	Aborted bool        `json:"aborted,omitempty"`
	Derived []string    `json:"derived,omitempty"`

	// Statistic outcome.
	Values     []float64          `json:"values,omitempty"`
	Regression *series.Regression `json:"regression,omitempty"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var body DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.dispatcher.Dispatch(r.Context(), body.Op, body.Selection)
	if err != nil {
		s.metrics.observe(string(body.Op), start, "error")
		s.writeDispatchError(w, err)
		return
	}

	resp := DispatchResponse{Op: res.Op, Aborted: res.Aborted, Derived: res.Derived}
	if res.Stat != nil {
		for name, value := range body.Choices {
			res.Stat.SetChoice(name, value)
		}
		out, err := res.Stat.Execute(r.Context())
		if err != nil {
			s.metrics.observe(string(body.Op), start, "error")
			s.writeDispatchError(w, err)
			return
		}
		resp.Values = out.Values
		resp.Regression = out.Regression
	}

	s.metrics.observe(string(body.Op), start, "ok")
	writeJSON(w, s.logger, resp)
}

func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrVariableNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptySelection):
		status = http.StatusBadRequest
	}
	s.logger.Error("dispatch failed", "error", err)
	http.Error(w, fmt.Sprintf("Dispatch error: %v", err), status)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.cat.Menus())
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	ids, err := s.pool.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, s.logger, ids)
}

func (s *Server) handleVariable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.pool.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVariableNotFound) {
			http.Error(w, "Variable not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, v)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rec.Entries(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Transcript error: %v", err), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown")
		fmt.Fprint(w, transcript.Render(s.rec.SessionID(), entries))
		return
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, s.logger, entries)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Meridian API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

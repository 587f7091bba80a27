// Package server serves the review over HTTP for the browser front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dhirajnair/pspec/internal/bestpractice"
	"github.com/dhirajnair/pspec/internal/finding"
	"github.com/dhirajnair/pspec/internal/review"
	"github.com/dhirajnair/pspec/internal/style"
)

// PEP8Info identifies the PEP 8 revision reported with every response.
type PEP8Info struct {
	URL      string
	Date     string
	Revision string
}

// Config configures a Server.
type Config struct {
	Options     review.Options
	PEP8        PEP8Info
	CORSOrigins []string
	// RateLimit is requests per second across all clients; zero disables it.
	RateLimit float64
	Burst     int
	Version   string
	Logger    *slog.Logger
}

// Server handles the check API.
type Server struct {
	cfg     Config
	log     *slog.Logger
	limiter *rate.Limiter
	handler http.Handler
}

// CheckResponse is the body of every /api/check response.
type CheckResponse struct {
	OK           bool                    `json:"ok"`
	PEP8Date     string                  `json:"pep8_date"`
	PEP8URL      string                  `json:"pep8_url"`
	PEP8Revision string                  `json:"pep8_revision"`
	Issues       []style.Issue           `json:"issues"`
	Advisories   []bestpractice.Advisory `json:"advisories"`
	Findings     []finding.Finding       `json:"findings"`
	Error        *string                 `json:"error"`
}

// engineFields maps optional request booleans to engine names.
var engineFields = []struct{ field, engine string }{
	{"enable_types", review.EngineTypes},
	{"enable_dataflow", review.EngineDataflow},
	{"enable_errors", review.EngineErrors},
	{"enable_security", review.EngineSecurity},
	{"enable_metrics", review.EngineMetrics},
	{"enable_insights", review.EngineInsights},
	{"enable_style", review.EngineStyle},
}

// New builds a Server and its handler chain.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, log: cfg.Logger}
	if s.log == nil {
		s.log = slog.Default()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(limit, burst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/rules", s.handleRules)
	mux.HandleFunc("POST /api/check", s.handleCheck)

	s.handler = s.logRequests(s.cors(s.rateLimit(mux)))
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "pspec",
		"version":   s.cfg.Version,
		"endpoints": []string{"POST /api/check", "GET /api/rules"},
	})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rules": bestpractice.Catalogue()})
}

// bodyLimit bounds the request body; JSON escaping can grow code several times.
func (s *Server) bodyLimit() int64 {
	if s.cfg.Options.MaxCodeLength <= 0 {
		return 16 << 20
	}
	return int64(s.cfg.Options.MaxCodeLength)*6 + 64<<10
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	resp := s.check(w, r)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) CheckResponse {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.bodyLimit()))
	if err != nil {
		return s.failure(fmt.Sprintf("Reading request: %v", err))
	}
	// A valid document that is not an object just has no code field.
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return s.failure(fmt.Sprintf("Invalid JSON: %v", err))
		}
		body = nil
	}
	var code string
	if raw, ok := body["code"]; !ok || isNull(raw) || json.Unmarshal(raw, &code) != nil {
		return s.failure("Missing or invalid 'code' field (must be a string).")
	}
	if limit := s.cfg.Options.MaxCodeLength; limit > 0 && len(code) > limit {
		return s.failure(fmt.Sprintf("Code exceeds maximum length (%d bytes).", limit))
	}

	opts := s.cfg.Options
	// Best practice runs only on an explicit true once the field is present.
	if raw, ok := body["pybp_enabled"]; ok {
		on, _ := boolField(raw)
		opts.BestPractice = on
	}
	for _, f := range engineFields {
		if raw, ok := body[f.field]; ok {
			if on, valid := boolField(raw); valid {
				_ = opts.Set(on, f.engine)
			}
		}
	}

	res, err := review.Run(r.Context(), code, opts)
	if err != nil {
		return s.failure(err.Error())
	}
	out := s.base()
	out.OK = true
	out.Issues = res.Issues
	out.Advisories = res.Advisories
	out.Findings = res.Findings
	return out
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// boolField decodes a JSON boolean; null and other types are not valid.
func boolField(raw json.RawMessage) (value, ok bool) {
	if isNull(raw) {
		return false, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, false
	}
	return value, true
}

func (s *Server) base() CheckResponse {
	return CheckResponse{
		PEP8Date:     s.cfg.PEP8.Date,
		PEP8URL:      s.cfg.PEP8.URL,
		PEP8Revision: s.cfg.PEP8.Revision,
		Issues:       []style.Issue{},
		Advisories:   []bestpractice.Advisory{},
		Findings:     []finding.Finding{},
	}
}

func (s *Server) failure(msg string) CheckResponse {
	out := s.base()
	out.Error = &msg
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package server exposes the text analysis suite over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/internal/metrics"
	"github.com/cognicore/textsuite/pkg/textsuite"
)

// DefaultMaxUploadBytes bounds request bodies when Options leaves it unset.
const DefaultMaxUploadBytes int64 = 20 << 20

// Options configures the HTTP surface.
type Options struct {
	// Metrics enables request metrics and the scrape endpoint when non-nil.
	Metrics     *metrics.Metrics
	MetricsPath string
	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64
}

// Server implements the HTTP endpoints.
type Server struct {
	suite  *textsuite.Suite
	opts   Options
	logger *slog.Logger
}

// New creates a Server over suite.
func New(suite *textsuite.Suite, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Server{
		suite:  suite,
		opts:   opts,
		logger: logger.WithComponent("http"),
	}
}

// Handler builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /api/v1/topics          → topic analysis (multipart file or JSON text)
//	POST   /api/v1/sentiment       → sentiment analysis
//	GET    /api/v1/sentiment/history → remembered sentiment results
//	DELETE /api/v1/sentiment/history → forget them
//	POST   /api/v1/paraphrase      → paraphrase through the language model
//	POST   /api/v1/chat            → chat session message
//	GET    /api/v1/reports         → list archived reports
//	GET    /api/v1/reports/{id}    → get archived report
//	GET    /health                 → health
//	GET    /metrics                → Prometheus scrape
//
// Middleware chain (outermost first):
//
//	Recover → RequestID → Metrics → mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.Health)

	mux.HandleFunc("POST /api/v1/topics", s.Topics)
	mux.HandleFunc("POST /api/v1/sentiment", s.Sentiment)
	mux.HandleFunc("GET /api/v1/sentiment/history", s.SentimentHistory)
	mux.HandleFunc("DELETE /api/v1/sentiment/history", s.ClearSentimentHistory)
	mux.HandleFunc("POST /api/v1/paraphrase", s.Paraphrase)
	mux.HandleFunc("POST /api/v1/chat", s.Chat)

	mux.HandleFunc("GET /api/v1/reports", s.ListReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", s.GetReport)

	if s.opts.Metrics != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics.Handler())
	}

	var chain http.Handler = mux
	chain = s.opts.Metrics.Middleware(routePattern)(chain)
	chain = RequestID(chain)
	chain = s.Recover(chain)
	return chain
}

func routePattern(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: logger.RequestID(r.Context())})
}

func queryInt(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

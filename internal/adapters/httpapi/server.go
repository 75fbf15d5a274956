package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/mehrguard/url-security/internal/application"
	"github.com/mehrguard/url-security/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the scan service over HTTP. Scanning is synchronous:
// the pipeline is sub-millisecond, so there is nothing to enqueue.
type Server struct {
	service *application.ScanService
	log     *logrus.Logger
}

// New creates the HTTP adapter
func New(service *application.ScanService, log *logrus.Logger) *Server {
	return &Server{service: service, log: log}
}

// Routes returns the chi router with all handlers mounted
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/scan", s.handleScan)
	r.Get("/history", s.handleHistory)
	return r
}

type scanRequest struct {
	URL  string `json:"url"`
	Save bool   `json:"save"`
}

type scanResponse struct {
	Assessment domain.RiskAssessment       `json:"assessment"`
	Hints      []domain.CounterfactualHint `json:"hints,omitempty"`
	ScanID     string                      `json:"scan_id"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	record, err := s.service.Scan(r.Context(), req.URL, req.Save)
	if err != nil {
		// The assessment is still valid; only persistence failed
		s.log.WithError(err).Warn("scan persisted with errors")
	}

	s.writeJSON(w, http.StatusOK, scanResponse{
		Assessment: record.Assessment,
		Hints:      s.service.Explain(record.Assessment),
		ScanID:     record.ID.String(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

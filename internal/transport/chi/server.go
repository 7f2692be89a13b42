package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/domain"
	"github.com/Turnstyle/ria-hunter/internal/domain/search/request"
	healthuc "github.com/Turnstyle/ria-hunter/internal/usecase/health"
	queryuc "github.com/Turnstyle/ria-hunter/internal/usecase/query"
)

// Server is the HTTP API surface of the engine.
type Server struct {
	query  *queryuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(query *queryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		query:  query,
		health: health,
		logger: logger,
	}
}

// Routes registers the API routes on a router. Middleware is the caller's
// concern; the composition root wires it.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchProfiles)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// SearchProfiles handles POST /v1/search.
func (s *Server) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(
		dto.Query, dto.TopK,
		dto.SemanticWeight, dto.LexicalWeight,
		dto.MinSimilarity, dto.IncludePeople,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.query.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, responseToDTO(resp))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorDTO{
		Code:    code,
		Message: message,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidQuery) {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
		return
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
)

const msgInvalidEndpoint = "Invalid endpoint"

// Server exposes the listing use cases over HTTP.
type Server struct {
	properties *propertyuc.Service
	health     *healthuc.Service
	auth       *Authenticator
	logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	properties *propertyuc.Service,
	health *healthuc.Service,
	auth *Authenticator,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{properties: properties, health: health, auth: auth, logger: logger}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/search", s.SearchProperties)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/properties", s.CreateProperties)
		r.Get("/properties/{id}", s.GetProperty)
		r.Put("/properties/{id}", s.UpdateProperty)
		r.Delete("/properties/{id}", s.DeleteProperty)
		r.Get("/user/properties", s.ListUserProperties)
	})

	r.NotFound(invalidEndpoint)
	r.MethodNotAllowed(invalidEndpoint)
}

// Handler returns a router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// CreateProperties handles POST /properties with one draft or an array of drafts.
func (s *Server) CreateProperties(w http.ResponseWriter, r *http.Request) {
	drafts, batch, err := decodeDrafts(r.Body)
	if err != nil {
		writeResponse(w, propertyuc.ErrorResponse(err))
		return
	}
	writeResponse(w, s.properties.Create(r.Context(), CallerFromContext(r.Context()), drafts, batch))
}

// GetProperty handles GET /properties/{id}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, s.properties.Get(r.Context(), chi.URLParam(r, "id")))
}

// UpdateProperty handles PUT /properties/{id}.
func (s *Server) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r.Body)
	if err != nil {
		writeResponse(w, propertyuc.ErrorResponse(err))
		return
	}
	writeResponse(w, s.properties.Update(r.Context(), CallerFromContext(r.Context()), chi.URLParam(r, "id"), d))
}

// DeleteProperty handles DELETE /properties/{id}.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, s.properties.Delete(r.Context(), CallerFromContext(r.Context()), chi.URLParam(r, "id")))
}

// ListUserProperties handles GET /user/properties.
func (s *Server) ListUserProperties(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, s.properties.ListByOwner(r.Context(), CallerFromContext(r.Context())))
}

// SearchProperties handles /search. Only POST bodies are decoded; the method check is the service's.
func (s *Server) SearchProperties(w http.ResponseWriter, r *http.Request) {
	var c criteria.Criteria
	if r.Method == http.MethodPost {
		var err error
		if c, err = decodeCriteria(r.Body); err != nil {
			writeResponse(w, propertyuc.ErrorResponse(err))
			return
		}
	}
	writeResponse(w, s.properties.Search(r.Context(), r.Method, c))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func invalidEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgInvalidEndpoint)
}

func writeResponse(w http.ResponseWriter, resp propertyuc.Response) {
	writeJSON(w, resp.Status, payloadToJSON(resp.Body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payloadJSON{Error: message})
}

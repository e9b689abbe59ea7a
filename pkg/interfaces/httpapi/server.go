package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mfgops/bomcost/pkg/application/dto"
	"github.com/mfgops/bomcost/pkg/application/services"
	"github.com/mfgops/bomcost/pkg/application/services/orchestration"
	"github.com/mfgops/bomcost/pkg/domain/entities"
	"github.com/rs/zerolog"
)

// Server exposes planning and production over JSON
type Server struct {
	planning     *services.PlanningService
	production   *services.ProductionService
	orchestrator *orchestration.OrderOrchestrator
	logger       zerolog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	planning *services.PlanningService,
	production *services.ProductionService,
	orchestrator *orchestration.OrderOrchestrator,
	logger zerolog.Logger,
) *Server {
	return &Server{
		planning:     planning,
		production:   production,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Routes returns the router serving every endpoint
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/plans", s.handlePlan)
	r.Get("/productions", s.handleListProductions)
	r.Post("/productions", s.handlePlaceOrder)
	r.Route("/productions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetProduction)
		r.Get("/stages", s.handleStages)
		r.Post("/advance", s.handleAdvance)
		r.Post("/preview", s.handlePreview)
	})
	return r
}

type placeOrderRequest struct {
	dto.PlanRequest
	AllowShortages bool `json:"allow_shortages"`
}

type costItemsRequest struct {
	SelectedCostItems []entities.CostItemID `json:"selected_cost_items"`
}

type stagesResponse struct {
	Pipeline   entities.Pipeline `json:"pipeline"`
	Current    entities.Stage    `json:"current"`
	Stages     []entities.Stage  `json:"stages"`
	NextStages []entities.Stage  `json:"next_stages"`
	Terminal   bool              `json:"terminal"`
}

type errorResponse struct {
	Error string `json:"error"`
	// Plan is set when an order was rejected for insufficient stock
	Plan *dto.OrderPlan `json:"plan,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	plan, err := s.planning.PlanOrder(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.orchestrator.PlaceOrder(r.Context(), req.PlanRequest, orchestration.PlaceOptions{AllowShortages: req.AllowShortages})
	if errors.Is(err, orchestration.ErrInsufficientStock) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Plan: result.Plan})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListProductions(w http.ResponseWriter, r *http.Request) {
	records, err := s.production.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetProduction(w http.ResponseWriter, r *http.Request) {
	view, err := s.production.Get(r.Context(), productionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	view, err := s.production.Get(r.Context(), productionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stagesResponse{
		Pipeline:   view.Record.Pipeline,
		Current:    view.Record.Status,
		Stages:     view.Record.Pipeline.Stages(),
		NextStages: view.NextStages,
		Terminal:   view.Terminal,
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req dto.AdvanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	id := productionID(r)
	if _, err := s.production.Advance(r.Context(), id, req.To, req.SelectedCostItems); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.production.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req costItemsRequest
	if !s.decode(w, r, &req) {
		return
	}
	preview, err := s.production.PreviewCost(r.Context(), productionID(r), req.SelectedCostItems)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func productionID(r *http.Request) entities.ProductionID {
	return entities.ProductionID(chi.URLParam(r, "id"))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// enum and number parse failures surface as validation errors
		if errors.Is(err, entities.ErrValidation) {
			s.writeError(w, r, err)
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

// StatusFor maps an error onto its HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidTransition), errors.Is(err, orchestration.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, entities.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

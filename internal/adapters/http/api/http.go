// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kestrel-intel/kestrel/internal/domain/dedupe"
	"github.com/kestrel-intel/kestrel/internal/domain/entities"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/internal/domain/types"
	"github.com/kestrel-intel/kestrel/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a candidate for async intake. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, c *model.Candidate) bool

	// Briefing runs the full pipeline for one request.
	Briefing(ctx context.Context, req types.BriefingRequest) (*types.Briefing, error)

	// MoreItems serves backfill from the reserve store.
	MoreItems(ctx context.Context, userID, topic string, seen []string, limit int) ([]types.BriefingItem, error)

	// Read operations expose the engine's cached assessments.
	GeoRisk(ctx context.Context) []model.GeoRiskEntry
	Trends(ctx context.Context) []model.TrendSnapshot
	SourcesByTier(ctx context.Context) map[string][]string
	SourceSnapshot(ctx context.Context) map[string]model.SourceReliability
	Entities(ctx context.Context) []entities.Entity
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	ingestHandler   *IngestHandler
	briefingHandler *BriefingHandler
	moreHandler     *MoreHandler
	intelHandler    *IntelHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxBriefingItems int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		ingestHandler:   NewIngestHandler(deps),
		briefingHandler: NewBriefingHandler(deps, maxBriefingItems),
		moreHandler:     NewMoreHandler(deps),
		intelHandler:    NewIntelHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/ingest", MetricsMiddleware(s.ingestHandler.HandleIngest, "ingest"))
	mux.HandleFunc("/api/v1/briefing", MetricsMiddleware(s.briefingHandler.HandleBriefing, "briefing"))
	mux.HandleFunc("/api/v1/more", MetricsMiddleware(s.moreHandler.HandleMore, "more"))
	mux.HandleFunc("/api/v1/georisk", MetricsMiddleware(s.intelHandler.HandleGeoRisk, "georisk"))
	mux.HandleFunc("/api/v1/trends", MetricsMiddleware(s.intelHandler.HandleTrends, "trends"))
	mux.HandleFunc("/api/v1/sources", MetricsMiddleware(s.intelHandler.HandleSources, "sources"))
	mux.HandleFunc("/api/v1/entities", MetricsMiddleware(s.intelHandler.HandleEntities, "entities"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

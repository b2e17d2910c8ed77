// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/kestrel-intel/kestrel/internal/domain/entities"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/internal/domain/types"
)

// IntelDependencies defines the read surface over the engine's cached
// assessments.
type IntelDependencies interface {
	GeoRisk(ctx context.Context) []model.GeoRiskEntry
	Trends(ctx context.Context) []model.TrendSnapshot
	SourcesByTier(ctx context.Context) map[string][]string
	SourceSnapshot(ctx context.Context) map[string]model.SourceReliability
	Entities(ctx context.Context) []entities.Entity
}

// IntelHandler serves geo-risk, trend, source and entity snapshots.
type IntelHandler struct {
	deps IntelDependencies
}

// NewIntelHandler creates a new intel handler.
func NewIntelHandler(deps IntelDependencies) *IntelHandler {
	return &IntelHandler{deps: deps}
}

// HandleGeoRisk handles GET /api/v1/georisk requests.
func (h *IntelHandler) HandleGeoRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries := h.deps.GeoRisk(r.Context())
	views := make([]types.GeoRiskView, 0, len(entries))
	for _, e := range entries {
		views = append(views, types.NewGeoRiskView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": views})
}

// HandleTrends handles GET /api/v1/trends requests.
func (h *IntelHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snapshots := h.deps.Trends(r.Context())
	views := make([]types.TrendView, 0, len(snapshots))
	emerging := make([]string, 0)
	for _, s := range snapshots {
		views = append(views, types.NewTrendView(s))
		if s.IsEmerging {
			emerging = append(emerging, s.Topic)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trends":          views,
		"emerging_topics": emerging,
	})
}

// sourceView is the wire shape of one tracked source.
type sourceView struct {
	SourceID           string  `json:"source_id"`
	ReliabilityScore   float64 `json:"reliability_score"`
	BiasRating         string  `json:"bias_rating,omitempty"`
	HistoricalAccuracy float64 `json:"historical_accuracy"`
	CorroborationRate  float64 `json:"corroboration_rate"`
	TrustFactor        float64 `json:"trust_factor"`
	TotalItemsSeen     int64   `json:"total_items_seen"`
}

// HandleSources handles GET /api/v1/sources requests.
func (h *IntelHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snapshot := h.deps.SourceSnapshot(r.Context())
	views := make([]sourceView, 0, len(snapshot))
	for _, s := range snapshot {
		views = append(views, sourceView{
			SourceID:           s.SourceID,
			ReliabilityScore:   s.ReliabilityScore,
			BiasRating:         s.BiasRating,
			HistoricalAccuracy: s.HistoricalAccuracy,
			CorroborationRate:  s.CorroborationRate,
			TrustFactor:        s.TrustFactor(),
			TotalItemsSeen:     s.TotalItemsSeen,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].TrustFactor != views[j].TrustFactor {
			return views[i].TrustFactor > views[j].TrustFactor
		}
		return views[i].SourceID < views[j].SourceID
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"tiers":   h.deps.SourcesByTier(r.Context()),
		"sources": views,
	})
}

// HandleEntities handles GET /api/v1/entities requests.
func (h *IntelHandler) HandleEntities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	found := h.deps.Entities(r.Context())
	if found == nil {
		found = []entities.Entity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": found})
}

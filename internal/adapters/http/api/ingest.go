// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-intel/kestrel/internal/domain/dedupe"
	"github.com/kestrel-intel/kestrel/internal/domain/model"
	"github.com/kestrel-intel/kestrel/pkg/metrics"
)

// IngestDependencies defines the interface for candidate intake.
type IngestDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, c *model.Candidate) bool
}

// IngestHandler handles candidate batch submissions.
type IngestHandler struct {
	deps IngestDependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// candidateRequest mirrors the wire schema for one submitted candidate.
type candidateRequest struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Source           string  `json:"source"`
	Summary          string  `json:"summary"`
	URL              string  `json:"url"`
	Topic            string  `json:"topic"`
	EvidenceScore    float64 `json:"evidence_score"`
	NoveltyScore     float64 `json:"novelty_score"`
	PreferenceFit    float64 `json:"preference_fit"`
	PredictionSignal float64 `json:"prediction_signal"`
	DiscoveredBy     string  `json:"discovered_by"`
	CreatedAt        string  `json:"created_at"`
}

func (c candidateRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(c.Source) == "":
		return errors.New("missing source")
	case strings.TrimSpace(c.Topic) == "":
		return errors.New("missing topic")
	}
	for _, s := range []float64{c.EvidenceScore, c.NoveltyScore, c.PreferenceFit, c.PredictionSignal} {
		if s < 0 || s > 1 {
			return errors.New("signal scores must be within [0,1]")
		}
	}
	return nil
}

// toCandidate converts the wire shape to the domain model. An unset or
// unparseable created_at falls back to the current time.
func (c candidateRequest) toCandidate() *model.Candidate {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
		createdAt = ts
	}
	return &model.Candidate{
		ID:               id,
		Title:            c.Title,
		Source:           c.Source,
		Summary:          c.Summary,
		URL:              c.URL,
		Topic:            c.Topic,
		EvidenceScore:    c.EvidenceScore,
		NoveltyScore:     c.NoveltyScore,
		PreferenceFit:    c.PreferenceFit,
		PredictionSignal: c.PredictionSignal,
		DiscoveredBy:     c.DiscoveredBy,
		CreatedAt:        createdAt,
	}
}

// ingestRequest mirrors the wire schema for POST /api/v1/ingest.
type ingestRequest struct {
	Items []candidateRequest `json:"items"`
}

type ingestItemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type ingestResponse struct {
	Accepted   int                `json:"accepted"`
	Duplicates int                `json:"duplicates"`
	Rejected   int                `json:"rejected"`
	Results    []ingestItemResult `json:"results"`
}

// HandleIngest handles POST /api/v1/ingest requests.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty batch")))
		return
	}

	resp := ingestResponse{Results: make([]ingestItemResult, 0, len(req.Items))}
	for i := range req.Items {
		item := req.Items[i]
		if err := item.validate(); err != nil {
			resp.Rejected++
			metrics.RecordCandidateRejected()
			resp.Results = append(resp.Results, ingestItemResult{ID: item.ID, Status: "rejected", Reason: err.Error()})
			continue
		}

		c := item.toCandidate()

		// Idempotency check, mark as seen first.
		if h.deps.SeenAndRecord(r.Context(), c.ID) {
			resp.Duplicates++
			metrics.RecordCandidateDuplicate()
			resp.Results = append(resp.Results, ingestItemResult{ID: c.ID, Status: "duplicate"})
			continue
		}

		if ok := h.deps.Enqueue(r.Context(), c); !ok {
			// Roll back the seen status since enqueue failed.
			h.deps.Unrecord(r.Context(), c.ID)
			writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
			return
		}
		resp.Accepted++
		metrics.RecordCandidateIngested()
		resp.Results = append(resp.Results, ingestItemResult{ID: c.ID, Status: "accepted"})
	}

	writeJSON(w, http.StatusAccepted, resp)
}

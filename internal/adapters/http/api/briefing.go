// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kestrel-intel/kestrel/internal/domain/types"
)

// BriefingDependencies defines the interface for briefing runs.
type BriefingDependencies interface {
	Briefing(ctx context.Context, req types.BriefingRequest) (*types.Briefing, error)
}

// BriefingHandler handles briefing requests.
type BriefingHandler struct {
	deps     BriefingDependencies
	maxItems int
}

// NewBriefingHandler creates a new briefing handler.
func NewBriefingHandler(deps BriefingDependencies, maxItems int) *BriefingHandler {
	return &BriefingHandler{
		deps:     deps,
		maxItems: maxItems,
	}
}

// HandleBriefing handles POST /api/v1/briefing requests.
func (h *BriefingHandler) HandleBriefing(w http.ResponseWriter, r *http.Request) {
	const op = "api.briefing"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.BriefingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}
	for topic, weight := range req.TopicWeights {
		if weight < 0 || weight > 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("topic weight out of range: "+topic)))
			return
		}
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.MaxItems < 1 || req.MaxItems > h.maxItems {
		req.MaxItems = h.maxItems
	}

	briefing, err := h.deps.Briefing(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, briefing)
}

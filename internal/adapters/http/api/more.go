// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kestrel-intel/kestrel/internal/domain/types"
)

const defaultMoreLimit = 5

// MoreDependencies defines the interface for backfill requests.
type MoreDependencies interface {
	MoreItems(ctx context.Context, userID, topic string, seen []string, limit int) ([]types.BriefingItem, error)
}

// MoreHandler serves additional stories beyond the last briefing.
type MoreHandler struct {
	deps MoreDependencies
}

// NewMoreHandler creates a new backfill handler.
func NewMoreHandler(deps MoreDependencies) *MoreHandler {
	return &MoreHandler{deps: deps}
}

// moreRequest mirrors the wire schema for POST /api/v1/more.
type moreRequest struct {
	UserID  string   `json:"user_id"`
	Topic   string   `json:"topic,omitempty"`
	SeenIDs []string `json:"seen_ids,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

type moreResponse struct {
	Items []types.BriefingItem `json:"items"`
}

// HandleMore handles POST /api/v1/more requests.
func (h *MoreHandler) HandleMore(w http.ResponseWriter, r *http.Request) {
	const op = "api.more"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req moreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}
	if req.Limit < 1 {
		req.Limit = defaultMoreLimit
	}

	items, err := h.deps.MoreItems(r.Context(), req.UserID, req.Topic, req.SeenIDs, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if items == nil {
		items = []types.BriefingItem{}
	}
	writeJSON(w, http.StatusOK, moreResponse{Items: items})
}

// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/salerec/internal/logging"
	"github.com/tomtom215/salerec/internal/recommend"
)

// BecauseResponse lists the user's items that explain a recommendation.
type BecauseResponse struct {
	UserID  string   `json:"user_id"`
	ItemID  string   `json:"item_id"`
	Because []string `json:"because"`
}

// NeighborsResponse is a neighborhood in the engine's mode.
type NeighborsResponse struct {
	ID        string               `json:"id"`
	Mode      string               `json:"mode"`
	Metric    string               `json:"metric"`
	Neighbors []recommend.Neighbor `json:"neighbors"`
}

// Recommendations handles GET /api/v1/recommendations/{userID}.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := pathParam(r, "userID")
	if err != nil {
		badParam(w, r, "userID")
		return
	}
	n, ok := intParam(r, "n", 0)
	if !ok {
		badParam(w, r, "n")
		return
	}
	explain, ok := boolParam(r, "explain")
	if !ok {
		badParam(w, r, "explain")
		return
	}
	explainN, ok := intParam(r, "explain_n", 0)
	if !ok {
		badParam(w, r, "explain_n")
		return
	}

	req := recommend.Request{
		UserID:    userID,
		N:         n,
		Explain:   explain,
		ExplainN:  explainN,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, resp, start)
}

// Because handles GET /api/v1/recommendations/{userID}/because/{itemID}.
func (h *Handler) Because(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := pathParam(r, "userID")
	if err != nil {
		badParam(w, r, "userID")
		return
	}
	itemID, err := pathParam(r, "itemID")
	if err != nil {
		badParam(w, r, "itemID")
		return
	}
	n, ok := intParam(r, "n", 0)
	if !ok {
		badParam(w, r, "n")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	because, err := h.engine.Because(ctx, userID, itemID, n)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if because == nil {
		because = []string{}
	}
	respondJSON(w, r, http.StatusOK, BecauseResponse{UserID: userID, ItemID: itemID, Because: because}, start)
}

// Neighbors handles GET /api/v1/neighbors/{id}. Pairs with an undefined
// similarity are omitted.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := pathParam(r, "id")
	if err != nil {
		badParam(w, r, "id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	neighbors, err := h.engine.Neighbors(ctx, id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	defined := make([]recommend.Neighbor, 0, len(neighbors))
	for _, nb := range neighbors {
		if nb.Defined() {
			defined = append(defined, nb)
		}
	}

	cfg := h.engine.Config()
	respondJSON(w, r, http.StatusOK, NeighborsResponse{
		ID:        id,
		Mode:      cfg.Mode,
		Metric:    cfg.Metric,
		Neighbors: defined,
	}, start)
}

// Refresh handles POST /api/v1/refresh. It rebuilds the model synchronously
// and returns the new status.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RefreshTimeout)
	defer cancel()

	if err := h.engine.Refresh(ctx); err != nil {
		respondDomainError(w, r, err)
		return
	}
	st := h.engine.Status()
	h.logger.Info().
		Int("model_version", st.ModelVersion).
		Int("users", st.UserCount).
		Int("items", st.ItemCount).
		Msg("Model refreshed on request")
	respondJSON(w, r, http.StatusOK, st, start)
}

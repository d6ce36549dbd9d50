// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/salerec/internal/database"
	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/recommend"
)

// maxSaleBody bounds POST /sales bodies.
const maxSaleBody = 64 << 10

// CreateSaleRequest is the body of POST /api/v1/sales.
type CreateSaleRequest struct {
	User    string `json:"user" validate:"required,max=64"`
	Brand   string `json:"brand" validate:"required,max=64,featurepart"`
	Product string `json:"product" validate:"required,max=64,featurepart"`
}

// ListSalesRequest holds the validated query of GET /api/v1/sales.
type ListSalesRequest struct {
	User   string `validate:"omitempty,max=64"`
	Brand  string `validate:"omitempty,max=64"`
	Limit  int    `validate:"min=1,max=1000"`
	Offset int    `validate:"min=0"`
}

// StatusResponse combines engine and storage state.
type StatusResponse struct {
	Engine recommend.Status     `json:"engine"`
	Config *recommend.Config    `json:"config"`
	Sales  *database.SalesStats `json:"sales,omitempty"`
}

// CreateSale handles POST /api/v1/sales. The engine is marked dirty so the
// next refresh includes the sale.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, "Sales store not configured", nil)
		return
	}

	var req CreateSaleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSaleBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return
	}
	req.User = strings.TrimSpace(req.User)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Product = strings.TrimSpace(req.Product)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	sale := &models.Sale{User: req.User, Brand: req.Brand, Product: req.Product}
	if err := h.store.InsertSale(r.Context(), sale); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.engine.MarkDirty()

	respondJSON(w, r, http.StatusCreated, sale, start)
}

// ListSales handles GET /api/v1/sales.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, "Sales store not configured", nil)
		return
	}

	limit, ok := intParam(r, "limit", 100)
	if !ok {
		badParam(w, r, "limit")
		return
	}
	offset, ok := intParam(r, "offset", 0)
	if !ok {
		badParam(w, r, "offset")
		return
	}
	req := ListSalesRequest{
		User:   r.URL.Query().Get("user"),
		Brand:  r.URL.Query().Get("brand"),
		Limit:  limit,
		Offset: offset,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	sales, err := h.store.ListSales(r.Context(), models.SaleFilter{
		User:   req.User,
		Brand:  req.Brand,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if sales == nil {
		sales = []*models.Sale{}
	}
	respondJSON(w, r, http.StatusOK, sales, start)
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := StatusResponse{
		Engine: h.engine.Status(),
		Config: h.engine.Config(),
	}
	if h.store != nil {
		st, err := h.store.Stats(r.Context())
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		resp.Sales = &st
	}
	respondJSON(w, r, http.StatusOK, resp, start)
}

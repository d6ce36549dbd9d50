// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/salerec/internal/models"
	"github.com/tomtom215/salerec/internal/validation"
)

// DefaultTopic is the subject sale events are published on.
const DefaultTopic = "sales.recorded"

// SaleEvent is the wire form of one recorded sale.
type SaleEvent struct {
	EventID    string    `json:"event_id"`
	User       string    `json:"user" validate:"required,max=64"`
	Brand      string    `json:"brand" validate:"required,max=64,featurepart"`
	Product    string    `json:"product" validate:"required,max=64,featurepart"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source,omitempty"`
}

// NewSaleEvent returns an event with a fresh ID and the current time.
func NewSaleEvent(user, brand, product string) *SaleEvent {
	return &SaleEvent{
		EventID:    uuid.NewString(),
		User:       user,
		Brand:      brand,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}

// Normalize trims whitespace from the identifying fields.
func (e *SaleEvent) Normalize() {
	e.User = strings.TrimSpace(e.User)
	e.Brand = strings.TrimSpace(e.Brand)
	e.Product = strings.TrimSpace(e.Product)
	e.EventID = strings.TrimSpace(e.EventID)
}

// Validate checks the event against its struct tags.
func (e *SaleEvent) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return verr
	}
	return nil
}

// ToSale converts the event into a storable sale. OccurredAt, when set,
// becomes the creation time.
func (e *SaleEvent) ToSale() *models.Sale {
	s := &models.Sale{User: e.User, Brand: e.Brand, Product: e.Product}
	if !e.OccurredAt.IsZero() {
		s.CreatedAt = e.OccurredAt.UTC()
		s.ModifiedAt = s.CreatedAt
	}
	return s
}

// MarshalEvent encodes an event for publishing.
func MarshalEvent(e *SaleEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal sale event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes, normalizes and validates a payload.
func UnmarshalEvent(data []byte) (*SaleEvent, error) {
	var e SaleEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, NewPermanentError("decode sale event", err)
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return nil, NewPermanentError("invalid sale event", err)
	}
	return &e, nil
}

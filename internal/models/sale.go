// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package models

import (
	"strings"
	"time"
)

// FeatureSeparator joins a brand and a product into one item id.
const FeatureSeparator = "###"

// Sale is a single purchase record.
type Sale struct {
	ID         int64     `json:"id"`
	User       string    `json:"user" validate:"required,max=64"`
	Brand      string    `json:"brand" validate:"required,max=64,featurepart"`
	Product    string    `json:"product" validate:"required,max=64,featurepart"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Feature returns the item id the sale contributes to.
func (s *Sale) Feature() string {
	return FeatureKey(s.Brand, s.Product)
}

// FeatureKey joins brand and product: FeatureKey("acme", "anvil") == "acme###anvil".
func FeatureKey(brand, product string) string {
	return brand + FeatureSeparator + product
}

// SplitFeature is the inverse of FeatureKey. ok is false when key has no separator.
func SplitFeature(key string) (brand, product string, ok bool) {
	return strings.Cut(key, FeatureSeparator)
}

// SaleFilter narrows ListSales.
type SaleFilter struct {
	User   string
	Brand  string
	Limit  int
	Offset int
}

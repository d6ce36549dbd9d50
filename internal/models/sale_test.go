// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package models

import "testing"

func TestFeatureKey(t *testing.T) {
	tests := []struct {
		brand, product string
		want           string
	}{
		{"acme", "anvil", "acme###anvil"},
		{"", "anvil", "###anvil"},
		{"acme", "", "acme###"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FeatureKey(tt.brand, tt.product)
			if got != tt.want {
				t.Errorf("FeatureKey(%q, %q) = %q, want %q", tt.brand, tt.product, got, tt.want)
			}
			b, p, ok := SplitFeature(got)
			if !ok || b != tt.brand || p != tt.product {
				t.Errorf("SplitFeature(%q) = (%q, %q, %v)", got, b, p, ok)
			}
		})
	}

	if _, _, ok := SplitFeature("plain"); ok {
		t.Error("SplitFeature(plain) ok = true")
	}

	s := &Sale{Brand: "b", Product: "p"}
	if s.Feature() != "b###p" {
		t.Errorf("Feature() = %q, want b###p", s.Feature())
	}
}

// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package builder

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/knn"
)

func prefs() recommend.Preferences {
	return recommend.Preferences{
		"u1": {"a": 1, "b": 1, "c": 1},
		"u2": {"a": 1, "b": 1, "d": 1},
		"u3": {"a": 1, "c": 1, "d": 1, "e": 1},
	}
}

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		model    string
		metric   string
		wantErr  bool
		wantItem bool
	}{
		{"item boolean", recommend.ModeItem, recommend.ModelBoolean, "loglikelihood", false, true},
		{"user explicit", recommend.ModeUser, recommend.ModelExplicit, "cosine", false, false},
		{"bad metric", recommend.ModeItem, recommend.ModelBoolean, "nope", true, false},
		{"bad mode", "both", recommend.ModelBoolean, "cosine", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := recommend.DefaultConfig()
			cfg.Mode = tt.mode
			cfg.Model = tt.model
			cfg.Metric = tt.metric

			model, rec, err := NewFactory(zerolog.Nop())(context.Background(), cfg, prefs())
			if (err != nil) != tt.wantErr {
				t.Fatalf("factory error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if model.UsersCount() != 3 {
				t.Errorf("UsersCount() = %d, want 3", model.UsersCount())
			}
			if model.HasPreferenceValues() != (tt.model == recommend.ModelExplicit) {
				t.Errorf("HasPreferenceValues() = %v", model.HasPreferenceValues())
			}
			_, isItem := rec.(*knn.ItemBased)
			if isItem != tt.wantItem {
				t.Errorf("item-based = %v, want %v", isItem, tt.wantItem)
			}
		})
	}
}

func TestNewFactory_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewFactory(zerolog.Nop())(ctx, recommend.DefaultConfig(), prefs()); err == nil {
		t.Error("factory error = nil for canceled context")
	}
}

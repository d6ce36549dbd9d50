// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	ModelReady        bool    `json:"model_ready"`
	ModelVersion      int     `json:"model_version"`
	Uptime            float64 `json:"uptime"`
}

func (h *Handler) dbConnected(r *http.Request) bool {
	return h.store != nil && h.store.Ping(r.Context()) == nil
}

// Health reports "healthy", or "degraded" when the database is unreachable
// or no model has been built. It always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st := h.engine.Status()
	db := h.dbConnected(r)

	status := "healthy"
	if !db || !st.Ready {
		status = "degraded"
	}
	respondJSON(w, r, http.StatusOK, HealthStatus{
		Status:            status,
		Version:           h.opts.Version,
		DatabaseConnected: db,
		ModelReady:        st.Ready,
		ModelVersion:      st.ModelVersion,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady answers 200 once a model is built and the database answers,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	db := h.dbConnected(r)
	modelReady := h.engine.Status().Ready
	if !db || !modelReady {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, "Service not ready", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"database_connected": db,
		"model_ready":        modelReady,
		"ready_to_serve":     true,
	}, start)
}

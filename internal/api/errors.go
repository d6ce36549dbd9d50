// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/salerec/internal/database"
	"github.com/tomtom215/salerec/internal/recommend"
)

// statusFor maps domain errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, recommend.ErrNotReady):
		return http.StatusServiceUnavailable, ErrCodeNotReady
	case errors.Is(err, recommend.ErrRefreshInProgress):
		return http.StatusConflict, ErrCodeRefreshConflict
	case errors.Is(err, recommend.ErrInsufficientData):
		return http.StatusUnprocessableEntity, ErrCodeInsufficientData
	case errors.Is(err, database.ErrInvalidSale):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeInternalError
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondDomainError writes err using statusFor. Only unexpected errors are
// logged.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		respondError(w, r, status, code, "Internal server error", err)
		return
	}
	respondError(w, r, status, code, err.Error(), nil)
}

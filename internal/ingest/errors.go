// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package ingest

import (
	"errors"
	"fmt"
)

// ErrNoStore is returned by NewHandler callers that forget the store.
var ErrNoStore = errors.New("ingest: sale store is nil")

// PermanentError marks a message that will never succeed on redelivery.
type PermanentError struct {
	Reason string
	Err    error
}

// NewPermanentError wraps err with a reason.
func NewPermanentError(reason string, err error) *PermanentError {
	return &PermanentError{Reason: reason, Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err, or anything it wraps, is a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Consumer is a blocking message consumer such as *ingest.Consumer.
type Consumer interface {
	Run(ctx context.Context) error
	Close() error
}

// IngestService runs a sale event consumer. The consumer is closed when
// the service stops for good.
type IngestService struct {
	consumer Consumer
	logger   zerolog.Logger
	name     string
}

// NewIngestService wraps consumer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIngestService(consumer Consumer, logger zerolog.Logger) *IngestService {
	return &IngestService{
		consumer: consumer,
		logger:   logger.With().Str("service", "ingest").Logger(),
		name:     "ingest-service",
	}
}

// Serve implements suture.Service. A consumer that returns while ctx is
// still live is reported as an error so suture restarts it.
func (s *IngestService) Serve(ctx context.Context) error {
	s.logger.Info().Msg("ingest service starting")
	err := s.consumer.Run(ctx)

	if ctx.Err() != nil {
		if cerr := s.consumer.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("closing consumer")
		}
		s.logger.Info().Msg("ingest service shutting down")
		return ctx.Err()
	}
	if err == nil {
		return fmt.Errorf("%s: subscription closed", s.name)
	}
	return fmt.Errorf("%s: %w", s.name, err)
}

func (s *IngestService) String() string {
	return s.name
}

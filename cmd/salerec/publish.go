// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/salerec/internal/ingest"
	"github.com/tomtom215/salerec/internal/logging"
)

func newPublishCommand(opts *rootOptions) *cobra.Command {
	var (
		topic  string
		source string
	)

	cmd := &cobra.Command{
		Use:   "publish USER BRAND PRODUCT",
		Short: "Publish a sale event to NATS JetStream",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			event := ingest.NewSaleEvent(args[0], args[1], args[2])
			event.Source = source
			event.Normalize()
			if err := event.Validate(); err != nil {
				return err
			}

			if topic == "" {
				topic = a.cfg.NATS.Topic
			}
			if topic == "" {
				topic = ingest.DefaultTopic
			}

			pub, err := ingest.NewNATSPublisher(a.cfg.NATS, logging.NewWatermillAdapter(logging.WithComponent("publish")))
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer func() {
				if cerr := pub.Close(); cerr != nil {
					a.logger.Warn().Err(cerr).Msg("Error closing publisher")
				}
			}()

			if err := ingest.Publish(pub, topic, event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", event.EventID, topic)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Subject (default: nats.topic)")
	cmd.Flags().StringVar(&source, "source", "cli", "Event source tag")
	return cmd
}

// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

/*
Package supervisor runs the long-lived services of the server under a
suture v4 tree.

	root ("salerec")
	├── data-layer
	│   └── RefreshService      model rebuilds (startup, interval, dirty flag)
	├── messaging-layer
	│   └── IngestService       NATS sale events (when nats.enabled)
	└── api-layer
	    └── HTTPServerService

A crash in one layer restarts only that layer's services. Supervisor events
are logged through sutureslog into the zerolog logger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewRefreshService(engine, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, 15*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor

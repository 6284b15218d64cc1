// Sensorgate - Environmental Sensor Telemetry Ingestion Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorgate

/*
Package supervisor runs the gateway's long-lived services under suture v4.

# Tree

	RootSupervisor ("sensorgate")
	├── DataSupervisor ("data-layer")
	│   └── SinkProbeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a sink that keeps refusing pings
puts the probe into backoff while the HTTP server keeps accepting requests
(and answering 500 for writes, or 503 on /health).

# Events

Supervisor events (service panics, restarts, backoff) go through
sutureslog into the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

# Shutdown

Cancel the context passed to Serve or ServeBackground. When the tree has
returned, UnstoppedServiceReport lists services that overran
ShutdownTimeout.
*/
package supervisor

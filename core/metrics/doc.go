// Package metrics exposes Prometheus counters for the notification hub.
//
// One *Metrics value is shared by the dispatcher, the enrichment pipeline,
// the subscriber registry and the HTTP endpoint:
//
//	m := metrics.New()
//	reg := hub.New(hub.WithRecorder(m))
//	pipe := enrich.New(md, idx, reg, enrich.WithRecorder(m))
//	mux.Handle("/metrics", m.Handler())
//
// Collectors live on a private registry so tests can create as many
// instances as they need.
package metrics

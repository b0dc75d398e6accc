// Package metrics provides observability hooks for content binding runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	p := processor.New(cfg, reg, processor.WithRecorder(metrics.NewPrometheusRecorder(promReg)))
//
// The Prometheus implementation registers its collectors on the registry it is
// given; HTTPHandler exposes that registry for scraping while watching.
package metrics

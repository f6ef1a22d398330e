// Package metrics provides api.Observer implementations that export store
// activity to Prometheus and OpenTelemetry.
//
// Both observers can be combined with the logging and counting observers
// from package api:
//
//	obs := api.NewCompositeObserver(
//		metrics.NewPrometheusObserver(metrics.WithRegistry(reg)),
//		metrics.NewTracingObserver(),
//		api.NewLoggingObserver(logger),
//	)
package metrics

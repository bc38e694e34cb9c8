// Package metrics exposes session counters and the active session gauge
// to Prometheus.
package metrics

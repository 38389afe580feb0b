// Package metrics holds the prometheus counters recorded during ingestion and
// the small HTTP server that exposes them for long batch runs.
package metrics

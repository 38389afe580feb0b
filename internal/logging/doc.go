// Package logging assembles structured slog loggers and formatting helpers used
// across assetgate.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so recipe code can tag log lines
// with correlation IDs, file paths, asset IDs, and step names. WithQuiet scopes
// a context so informational chatter from the catalog client is suppressed for
// the duration of an operation without touching global state.
package logging

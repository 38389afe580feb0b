// Package services defines shared utilities consumed by the reconciliation
// recipe, the remote catalog client, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp correlation IDs, file paths, asset IDs, and
//     pipeline step names for logging.
//   - Structured error markers plus the Wrap helper that keep fatal failures
//     (validation, creation) distinguishable from best-effort step failures.
//   - Classify, which turns an ingestion error into the outcome reported by
//     batch runs (succeeded, rejected before any remote call, failed).
package services

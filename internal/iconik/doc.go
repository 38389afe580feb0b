// Package iconik is a typed client for the catalog REST API used by the
// ingestion recipe.
//
// Responses are decoded into concrete structs once, at this boundary, so
// callers never probe heterogeneous payloads. StorageSettings tolerates the
// loose shapes storages carry in practice (booleans as strings, pattern lists
// as comma separated text). Requests carry App-ID/Auth-Token headers and an
// X-Request-ID taken from the context. Transient failures (429, 502-504,
// timeouts, connection resets) are retried with exponential backoff, and
// per-request tracing is skipped for contexts marked with logging.WithQuiet.
package iconik

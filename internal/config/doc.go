// Package config loads, normalizes, and validates assetgate configuration.
//
// It supplies repository defaults, reads TOML files, loads an optional .env
// file, and honours environment fallbacks for catalog credentials
// (ICONIK_APP_ID, ICONIK_AUTH_TOKEN, ICONIK_STORAGE_ID and their short
// aliases). Command-line flags are layered on top by the CLI before
// RequireRemote runs.
package config

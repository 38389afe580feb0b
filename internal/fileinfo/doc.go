// Package fileinfo validates local files before ingestion and derives the
// attributes the catalog records for them: checksum, size, title, MIME type,
// and the storage-relative directory after mount mapping. It also locates and
// parses sidecar metadata files.
package fileinfo

// Package batch walks a directory tree and feeds matching files through the
// ingestion recipe one at a time, pausing between files so the catalog is not
// flooded with requests.
package batch

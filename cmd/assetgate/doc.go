// Command assetgate ingests local media files into an iconik storage.
//
// The create command reconciles one file with the catalog: it finds or creates
// the asset, its ORIGINAL format, file set, and file record, applies metadata
// and collections, triggers mediainfo and proxy jobs, and records history.
// The batch command does the same for every matching file under a directory.
// Credentials come from flags, the config file, the environment, or a .env
// file, in that order of precedence.
package main

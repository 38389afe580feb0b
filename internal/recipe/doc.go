// Package recipe implements the storage gateway ingestion recipe.
//
// A Recipe reconciles one local file against the remote catalog: it validates
// the file against the storage settings, resolves or creates the asset, makes
// sure the ORIGINAL format, its file set, and the file record exist, then
// applies metadata, collection membership, transcode triggers, and a single
// history record. Every find step runs before its create step so a failed run
// can be repeated and will pick up the records an earlier attempt created.
//
// Identity and hierarchy failures abort the run. Metadata, collections, jobs,
// ACLs, and history are best effort and only surface through Result.
package recipe

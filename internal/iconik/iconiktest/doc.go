// Package iconiktest provides a stateful in-memory catalog server for tests.
//
// The fake keeps assets, formats, file sets, files, metadata, collections, and
// history in memory, simulates the effects of mediainfo and keyframe jobs, and
// lets tests seed soft-deleted objects or inject failures per request.
package iconiktest

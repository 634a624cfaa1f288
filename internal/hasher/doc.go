// Package hasher implements the concurrent discovery-and-hashing engine that
// turns a set of root paths into content digests for every regular file
// reachable beneath them.
//
// A single coordinator owns a priority queue of pending work and a ledger of
// dispatched-but-unanswered job ids. Worker goroutines receive one job at a
// time over bounded per-worker channels: a scan job expands a directory into
// child jobs, a digest job streams one file through SHA-512/256. Every
// dispatched id is answered by exactly one message back to the coordinator,
// which is what lets the run detect completion without knowing the file list
// up front.
//
// Symlinks are never followed and files that fail to open are silently
// omitted from the result set; a directory that cannot be listed aborts the
// whole run.
package hasher

// Package manifest assembles, parses, and compares the JSON manifest
// documents bs signs.
//
// The document layout is fixed rather than delegated to a JSON encoder: the
// detached signatures cover the exact bytes of the files block, so rendering
// and parsing both preserve entry order and reproduce the same text
// byte-for-byte.
package manifest

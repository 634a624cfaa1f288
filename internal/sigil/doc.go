// Package sigil formats and parses the self-describing reference strings used
// throughout bs: verify keys, detached signatures, content digests, and
// passphrase-sealed key boxes. Each sigil is URL-safe base64 (with padding)
// wrapped in a type suffix, so a value names its own algorithm wherever it
// appears.
package sigil

// Package identity manages the on-disk identity directory that supplies bs
// with signing and verification keys.
//
// The directory holds one JSON document per identity under ids/, named by the
// identity's pkid sigil, plus an alias map. A public identity carries only
// the verify key encoded in its pkid; a private identity adds a signing key
// sealed inside a passphrase-protected key box (argon2id key derivation,
// XSalsa20-Poly1305 secret box). Mutations are serialized through a file
// lock so concurrent bs invocations cannot corrupt the directory.
package identity

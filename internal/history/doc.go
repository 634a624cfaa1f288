// Package history records completed signing runs in a local SQLite database
// so `bs history` can show what was signed, when, and by which identity.
//
// The database is an append-only audit log, not operational state: bs never
// reads it to make decisions. Schema changes bump the version in schema.go;
// users delete the database to adopt a new schema.
package history

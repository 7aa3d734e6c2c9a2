// Package checkpoint persists interrupted runs. A Record holds the partially
// translated document, the per-leaf pass counters and the run configuration.
// Stores write records to a file (plain or LZ4-compressed JSON) or to a
// SQLite database, and every loaded record is validated before a resume may
// use it.
package checkpoint

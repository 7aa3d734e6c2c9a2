// Package document models the JSON-like tree that gets translated. Objects
// keep their member order so a document round-trips byte-for-byte in shape,
// and every node can be addressed by a path built from object keys and
// array indices.
package document

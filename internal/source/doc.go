// Package source provides the document a run translates: either a local
// JSON file or one entry of a versioned archive found through a remote
// version catalog.
package source

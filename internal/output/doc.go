// Package output writes a translated document into an output directory
// together with a small metadata file describing it.
package output

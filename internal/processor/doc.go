// Package processor is the top-level run driver. It loads the source
// document or resumes a checkpoint, builds the translator and the language
// pool, walks the document, and then either hands the result to the output
// writer or saves a checkpoint when the run was interrupted.
package processor

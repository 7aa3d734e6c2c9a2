// Package walker runs the telephone game over a document. It decomposes the
// document tree into string leaves, schedules every object and array level
// through the worker pool, and drives each leaf through its translation
// passes followed by one back-translation into the source language.
//
// Pass counters live in a Progress map that is shared with the checkpoint
// code so an interrupted run can resume each leaf where it stopped.
package walker

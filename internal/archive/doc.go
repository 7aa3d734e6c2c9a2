// Package archive moves a previous output directory aside before a new run
// writes its output.
package archive

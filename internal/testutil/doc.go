// Package testutil provides test doubles and file helpers shared by the
// package tests.
package testutil

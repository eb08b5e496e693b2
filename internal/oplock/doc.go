// Package oplock serializes mutating CLI invocations with a file lock so
// only one writer touches the pipeline database at a time.
package oplock

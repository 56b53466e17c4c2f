// Package pipeline runs the analyze job: load, clean, derive, aggregate and
// write. Each stage logs under its own stage name and any failure aborts the
// run before later artifacts are written.
package pipeline

// Package dataset holds the in-memory table the analyze job works on.
//
// A Dataset is an ordered set of rows over named columns. Columns start out
// as raw text exactly as read from the CSV; the cleaner converts designated
// columns to numeric storage and the metric deriver appends new numeric
// columns. Rows are never added or removed after loading.
//
// Numeric cells are Float values whose zero value is the missing marker, so a
// missing value is always distinguishable from zero.
package dataset

// Package aggregate computes per-group statistics over a cleaned dataset.
//
// Groups are discovered from the data: every distinct non-empty value of the
// grouping column is one group, and groups are always reported in ascending
// label order. Empty labels are treated as missing and belong to no group.
//
// Tie rules are deterministic. TopK keeps the original row order among equal
// values, MostCommon picks the lexically smallest of the tied values, and
// MaxBy keeps the first group in label order.
package aggregate

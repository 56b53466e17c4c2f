// Package cleaner coerces designated columns to numbers and fills missing
// values with the column mean.
//
// Coercion never fails: text that does not match the ParseNumeric grammar
// becomes missing. The fill step needs at least one valid value per column and
// reports ErrAllValuesMissingInColumn otherwise, instead of inventing a fill
// value.
package cleaner

// Package report turns analysis results into a summary document (JSON or
// YAML) and console tables.
package report

// Package mirror uploads a CSV file into a blob container, reads it back and
// appends its rows, stamped with an upload time, to a JSON sink.
//
// Runs are not deduplicated: mirroring the same N-row file twice leaves 2N
// entries in the sink.
package mirror

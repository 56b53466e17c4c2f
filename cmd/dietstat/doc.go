// Package main hosts the dietstat CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// a run-scoped logger and hands off to the internal pipeline and mirror
// packages. Reports go to stdout; logs go to stderr and, when enabled, to the
// log file.
package main

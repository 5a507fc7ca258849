// Package stv implements the round-driven counting engine for an
// Australian Senate election under the Single Transferable Vote
// provisions of the Commonwealth Electoral Act 1918.
//
// The engine is single-threaded and synchronous: it owns a candidate
// bundle ledger and two pending-distribution queues, drives them through
// a sequence of rounds, and emits a typed event per round outcome to a
// caller-supplied Sink. All arithmetic on vote counts uses exact
// non-negative rationals (see rational.go) so that truncation only ever
// happens at the points the Act specifies.
package stv

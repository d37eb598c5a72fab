// Package errors defines the closed error taxonomy of the recovery engine.
//
// Every failure raised by the data backend is eventually represented as a
// *TypedError carrying a Kind. Severity, recoverability, retryability, the
// recovery Strategy and the user-facing text are static tables keyed by Kind,
// so two errors of the same kind always agree on them.
package errors

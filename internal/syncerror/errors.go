// Package syncerror defines the error types used by the sync engine.
// Errors are captured per source and surfaced in the aggregated run
// summary rather than raised to the caller.
package syncerror

import "fmt"

// ConnectorError represents a failure while fetching from a provider API:
// auth failure, network failure, or a payload that cannot be normalized.
// It is recoverable by retrying a later run.
type ConnectorError struct {
	Source string
	Op     string
	Err    error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s: %s failed: %v", e.Source, e.Op, e.Err)
}

func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// AnchorReadError represents a failure to read the sync anchor from the
// sink. The resolver treats it as "no anchor known" and offers everything,
// which is safer than silently skipping a sync; the error still counts
// against the source so the degraded run is visible in the summary.
type AnchorReadError struct {
	Ledger string
	Err    error
}

func (e *AnchorReadError) Error() string {
	return fmt.Sprintf("failed to read anchor from ledger '%s': %v", e.Ledger, e.Err)
}

func (e *AnchorReadError) Unwrap() error {
	return e.Err
}

// PersistError represents a sink write failure after a successful fetch.
// The computed new transactions for that source are lost for this run and
// will be recomputed on the next run.
type PersistError struct {
	Ledger  string
	Written int
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to append to ledger '%s' (%d rows written): %v",
		e.Ledger, e.Written, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// NormalizeError represents a provider record that could not be converted
// into a canonical transaction.
type NormalizeError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("%s: failed to normalize %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *NormalizeError) Unwrap() error {
	return e.Err
}

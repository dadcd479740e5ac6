package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across connectors, the
// resolver and the orchestrator, making runs easy to filter and compare.
const (
	FieldSource   = "source"
	FieldLedger   = "ledger"
	FieldStrategy = "strategy"
	FieldCount    = "count"
	FieldFetched  = "fetched"
	FieldNew      = "new"
	FieldRunID    = "run_id"
	FieldPage     = "page"
	FieldAttempt  = "attempt"
	FieldDuration = "duration_ms"
	FieldStatus   = "status"
	FieldReason   = "reason"
)

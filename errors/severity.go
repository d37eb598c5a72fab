package errors

// Severity ranks how badly a failure affects the user.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Strategy names the remediation the recovery manager applies to a kind.
type Strategy string

const (
	StrategyRetry            Strategy = "RETRY"
	StrategyCacheCleanup     Strategy = "CACHE_CLEANUP"
	StrategyDataSanitization Strategy = "DATA_SANITIZATION"
	StrategyFallback         Strategy = "FALLBACK"
	StrategyUserIntervention Strategy = "USER_INTERVENTION"
	StrategyNoRecovery       Strategy = "NO_RECOVERY"
)

var severities = map[Kind]Severity{
	KindCacheValidationFailed:    SeverityMedium,
	KindCacheTimeout:             SeverityLow,
	KindCacheCorruption:          SeverityHigh,
	KindDuplicateConstraint:      SeverityMedium,
	KindForeignKeyViolation:      SeverityHigh,
	KindCheckConstraint:          SeverityMedium,
	KindExerciseValidationFailed: SeverityMedium,
	KindExerciseOrderConflict:    SeverityLow,
	KindExerciseUpsertFailed:     SeverityHigh,
	KindNetworkError:             SeverityMedium,
	KindConnectionTimeout:        SeverityMedium,
	KindServiceUnavailable:       SeverityHigh,
	KindRateLimitExceeded:        SeverityMedium,
	KindInvalidData:              SeverityMedium,
	KindMissingRequiredFields:    SeverityMedium,
	KindDataTypeMismatch:         SeverityMedium,
	KindDatabaseError:            SeverityHigh,
	KindQueryTimeout:             SeverityMedium,
	KindTransactionFailed:        SeverityHigh,
	KindUnauthorized:             SeverityHigh,
	KindForbidden:                SeverityHigh,
	KindSessionExpired:           SeverityMedium,
	KindMemoryLimitExceeded:      SeverityCritical,
	KindDiskSpaceFull:            SeverityCritical,
	KindUnknown:                  SeverityMedium,
}

var strategies = map[Kind]Strategy{
	KindCacheValidationFailed:    StrategyCacheCleanup,
	KindCacheTimeout:             StrategyRetry,
	KindCacheCorruption:          StrategyCacheCleanup,
	KindDuplicateConstraint:      StrategyFallback,
	KindForeignKeyViolation:      StrategyUserIntervention,
	KindCheckConstraint:          StrategyDataSanitization,
	KindExerciseValidationFailed: StrategyDataSanitization,
	KindExerciseOrderConflict:    StrategyFallback,
	KindExerciseUpsertFailed:     StrategyRetry,
	KindNetworkError:             StrategyRetry,
	KindConnectionTimeout:        StrategyRetry,
	KindServiceUnavailable:       StrategyRetry,
	KindRateLimitExceeded:        StrategyRetry,
	KindInvalidData:              StrategyDataSanitization,
	KindMissingRequiredFields:    StrategyDataSanitization,
	KindDataTypeMismatch:         StrategyDataSanitization,
	KindDatabaseError:            StrategyRetry,
	KindQueryTimeout:             StrategyRetry,
	KindTransactionFailed:        StrategyRetry,
	KindUnauthorized:             StrategyUserIntervention,
	KindForbidden:                StrategyUserIntervention,
	KindSessionExpired:           StrategyUserIntervention,
	KindMemoryLimitExceeded:      StrategyNoRecovery,
	KindDiskSpaceFull:            StrategyNoRecovery,
	KindUnknown:                  StrategyUserIntervention,
}

// SeverityOf returns the static severity of k.
func SeverityOf(k Kind) Severity {
	if s, ok := severities[k]; ok {
		return s
	}
	return severities[KindUnknown]
}

// StrategyOf returns the static recovery strategy of k. Kinds outside the
// taxonomy resolve to StrategyUserIntervention.
func StrategyOf(k Kind) Strategy {
	if s, ok := strategies[k]; ok {
		return s
	}
	return StrategyUserIntervention
}

// IsRecoverable reports whether the engine can attempt recovery for k without
// a human in the loop.
func IsRecoverable(k Kind) bool {
	switch StrategyOf(k) {
	case StrategyUserIntervention, StrategyNoRecovery:
		return false
	}
	return true
}

// IsRetryable reports whether k is handled by the retry loop.
func IsRetryable(k Kind) bool {
	return StrategyOf(k) == StrategyRetry
}

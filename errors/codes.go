package errors

// Kind is a machine-readable error category. The set is closed: anything the
// classifier cannot place lands in KindUnknown.
type Kind string

// Cache faults
const (
	KindCacheValidationFailed Kind = "CACHE_VALIDATION_FAILED"
	KindCacheTimeout          Kind = "CACHE_TIMEOUT"
	KindCacheCorruption       Kind = "CACHE_CORRUPTION"
)

// Database constraint violations
const (
	KindDuplicateConstraint Kind = "DUPLICATE_CONSTRAINT_VIOLATION"
	KindForeignKeyViolation Kind = "FOREIGN_KEY_VIOLATION"
	KindCheckConstraint     Kind = "CHECK_CONSTRAINT_VIOLATION"
)

// Exercise-record upsert faults
const (
	KindExerciseValidationFailed Kind = "EXERCISE_VALIDATION_FAILED"
	KindExerciseOrderConflict    Kind = "EXERCISE_ORDER_CONFLICT"
	KindExerciseUpsertFailed     Kind = "EXERCISE_UPSERT_FAILED"
)

// Network/connectivity faults
const (
	KindNetworkError       Kind = "NETWORK_ERROR"
	KindConnectionTimeout  Kind = "CONNECTION_TIMEOUT"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindRateLimitExceeded  Kind = "RATE_LIMIT_EXCEEDED"
)

// Validation faults
const (
	KindInvalidData           Kind = "INVALID_DATA"
	KindMissingRequiredFields Kind = "MISSING_REQUIRED_FIELDS"
	KindDataTypeMismatch      Kind = "DATA_TYPE_MISMATCH"
)

// Generic database faults
const (
	KindDatabaseError     Kind = "DATABASE_ERROR"
	KindQueryTimeout      Kind = "QUERY_TIMEOUT"
	KindTransactionFailed Kind = "TRANSACTION_FAILED"
)

// Authorization faults
const (
	KindUnauthorized   Kind = "UNAUTHORIZED"
	KindForbidden      Kind = "FORBIDDEN"
	KindSessionExpired Kind = "SESSION_EXPIRED"
)

// Resource-exhaustion faults
const (
	KindMemoryLimitExceeded Kind = "MEMORY_LIMIT_EXCEEDED"
	KindDiskSpaceFull       Kind = "DISK_SPACE_FULL"
)

// KindUnknown is the catch-all.
const KindUnknown Kind = "UNKNOWN_ERROR"

// Family groups kinds that share a retry profile and handling.
type Family string

const (
	FamilyCache         Family = "cache"
	FamilyConstraint    Family = "constraint"
	FamilyExercise      Family = "exercise"
	FamilyNetwork       Family = "network"
	FamilyValidation    Family = "validation"
	FamilyDatabase      Family = "database"
	FamilyAuthorization Family = "authorization"
	FamilyResource      Family = "resource"
	FamilyUnknown       Family = "unknown"
)

var kindFamilies = map[Kind]Family{
	KindCacheValidationFailed:    FamilyCache,
	KindCacheTimeout:             FamilyCache,
	KindCacheCorruption:          FamilyCache,
	KindDuplicateConstraint:      FamilyConstraint,
	KindForeignKeyViolation:      FamilyConstraint,
	KindCheckConstraint:          FamilyConstraint,
	KindExerciseValidationFailed: FamilyExercise,
	KindExerciseOrderConflict:    FamilyExercise,
	KindExerciseUpsertFailed:     FamilyExercise,
	KindNetworkError:             FamilyNetwork,
	KindConnectionTimeout:        FamilyNetwork,
	KindServiceUnavailable:       FamilyNetwork,
	KindRateLimitExceeded:        FamilyNetwork,
	KindInvalidData:              FamilyValidation,
	KindMissingRequiredFields:    FamilyValidation,
	KindDataTypeMismatch:         FamilyValidation,
	KindDatabaseError:            FamilyDatabase,
	KindQueryTimeout:             FamilyDatabase,
	KindTransactionFailed:        FamilyDatabase,
	KindUnauthorized:             FamilyAuthorization,
	KindForbidden:                FamilyAuthorization,
	KindSessionExpired:           FamilyAuthorization,
	KindMemoryLimitExceeded:      FamilyResource,
	KindDiskSpaceFull:            FamilyResource,
	KindUnknown:                  FamilyUnknown,
}

// allKinds keeps declaration order for Kinds().
var allKinds = []Kind{
	KindCacheValidationFailed, KindCacheTimeout, KindCacheCorruption,
	KindDuplicateConstraint, KindForeignKeyViolation, KindCheckConstraint,
	KindExerciseValidationFailed, KindExerciseOrderConflict, KindExerciseUpsertFailed,
	KindNetworkError, KindConnectionTimeout, KindServiceUnavailable, KindRateLimitExceeded,
	KindInvalidData, KindMissingRequiredFields, KindDataTypeMismatch,
	KindDatabaseError, KindQueryTimeout, KindTransactionFailed,
	KindUnauthorized, KindForbidden, KindSessionExpired,
	KindMemoryLimitExceeded, KindDiskSpaceFull,
	KindUnknown,
}

// Kinds returns every kind in the taxonomy.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k belongs to the taxonomy.
func (k Kind) Valid() bool {
	_, ok := kindFamilies[k]
	return ok
}

// Family returns the family k belongs to. Unrecognised kinds are FamilyUnknown.
func (k Kind) Family() Family {
	if f, ok := kindFamilies[k]; ok {
		return f
	}
	return FamilyUnknown
}

func (k Kind) String() string { return string(k) }

package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are grouped by module prefix
// so that log queries and metric labels can aggregate per subsystem.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeExternalService    ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Ontology / term-index error codes.
const (
	// ErrCodeIndexBuild covers any malformed term source that prevents index
	// construction. Construction failures are fatal: no partial index is
	// ever returned.
	ErrCodeIndexBuild ErrorCode = "ONTO_001"

	// ErrCodeHierarchyCycle marks a parent relation that is not a DAG.
	ErrCodeHierarchyCycle ErrorCode = "ONTO_002"

	// ErrCodeDuplicateTerm marks a duplicate term id with a conflicting
	// category in the term source.
	ErrCodeDuplicateTerm ErrorCode = "ONTO_003"

	ErrCodeTermNotFound      ErrorCode = "ONTO_004"
	ErrCodeUnknownCategory   ErrorCode = "ONTO_005"
	ErrCodeTermSourceFailure ErrorCode = "ONTO_006"
)

// Resolution error codes.
const (
	// ErrCodeInvalidMention marks empty or malformed mention text. Recovered
	// locally: the mention resolves to an unmapped Mapping and the batch
	// continues.
	ErrCodeInvalidMention ErrorCode = "RES_001"

	// ErrCodeResolutionTimeout marks cache contention that exceeded the
	// bounded wait. Recovered by recomputing without the cache.
	ErrCodeResolutionTimeout ErrorCode = "RES_002"

	ErrCodeResolutionFailed ErrorCode = "RES_003"
	ErrCodeEmptyBatch       ErrorCode = "RES_004"
)

// Fact / deduplication error codes.
const (
	ErrCodeInvalidFact ErrorCode = "FACT_001"
	ErrCodeDedupFailed ErrorCode = "FACT_002"
)

// httpStatusByCode maps error codes to the HTTP status returned by the API
// layer. Codes absent from the map fall back to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeInvalidMention:     http.StatusBadRequest,
	ErrCodeInvalidFact:        http.StatusBadRequest,
	ErrCodeEmptyBatch:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeTermNotFound:       http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeResolutionTimeout:  http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

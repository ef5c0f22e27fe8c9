package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Short aliases used by the factory helpers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Element Module Error Codes
const (
	ErrCodeElementNotFound       ErrorCode = "ELEM_001"
	ErrCodeElementInvalidSymbol  ErrorCode = "ELEM_002"
	ErrCodeElementDatasetInvalid ErrorCode = "ELEM_003"
)

// Compound Module Error Codes
const (
	ErrCodeCompoundTooFewElements ErrorCode = "CMP_001"
	ErrCodeCompoundInvalidCount   ErrorCode = "CMP_002"
	ErrCodeCompoundCountNotInSet  ErrorCode = "CMP_003"
	ErrCodeCompoundBatchTooLarge  ErrorCode = "CMP_004"
	ErrCodeCompoundInvalidFormula ErrorCode = "CMP_005"
	ErrCodeCompoundArchiveFailed  ErrorCode = "CMP_006"
)

// Infrastructure aliases
const (
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeExternalService
	CodeStorageError      = ErrCodeExternalService
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,

	ErrCodeElementNotFound:       http.StatusNotFound,
	ErrCodeElementInvalidSymbol:  http.StatusBadRequest,
	ErrCodeElementDatasetInvalid: http.StatusInternalServerError,

	ErrCodeCompoundTooFewElements: http.StatusBadRequest,
	ErrCodeCompoundInvalidCount:   http.StatusBadRequest,
	ErrCodeCompoundCountNotInSet:  http.StatusBadRequest,
	ErrCodeCompoundBatchTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeCompoundInvalidFormula: http.StatusBadRequest,
	ErrCodeCompoundArchiveFailed:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "rate limit exceeded, please retry later",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeElementNotFound:       "element not found",
	ErrCodeElementInvalidSymbol:  "invalid element symbol",
	ErrCodeElementDatasetInvalid: "element dataset is inconsistent",

	ErrCodeCompoundTooFewElements: "at least two distinct elements are required",
	ErrCodeCompoundInvalidCount:   "atom count out of range",
	ErrCodeCompoundCountNotInSet:  "atom count references an element outside the request",
	ErrCodeCompoundBatchTooLarge:  "batch exceeds the configured maximum size",
	ErrCodeCompoundInvalidFormula: "formula could not be parsed",
	ErrCodeCompoundArchiveFailed:  "failed to archive analysis report",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
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
)

// Document module error codes.
const (
	ErrCodeDocumentNotFound        ErrorCode = "DOC_001"
	ErrCodeDocumentTypeUnsupported ErrorCode = "DOC_002"
	ErrCodeDocumentEmpty           ErrorCode = "DOC_003"
	ErrCodeDocumentExtractFailed   ErrorCode = "DOC_004"
	ErrCodeDocumentTooLarge        ErrorCode = "DOC_005"
	ErrCodeDocumentStoreFailed     ErrorCode = "DOC_006"
)

// Comparison module error codes.
const (
	ErrCodeComparisonNotFound  ErrorCode = "CMP_001"
	ErrCodeComparisonFailed    ErrorCode = "CMP_002"
	ErrCodeScorerUnavailable   ErrorCode = "CMP_003"
	ErrCodeScorerMatrixInvalid ErrorCode = "CMP_004"
	ErrCodeSameDocument        ErrorCode = "CMP_005"
)

// Language-model / oracle error codes.
const (
	ErrCodeOracleUnavailable   ErrorCode = "LLM_001"
	ErrCodeOracleEmptyResponse ErrorCode = "LLM_002"
	ErrCodeOracleParseFailed   ErrorCode = "LLM_003"
	ErrCodeEmbeddingFailed     ErrorCode = "LLM_004"
)

// CodeUnknown marks errors that carry no AppError classification.
const CodeUnknown ErrorCode = "UNKNOWN"

// CodeOK is the pseudo-code returned by GetCode for a nil error.
const CodeOK ErrorCode = "OK"

// HTTPStatusForCode maps an ErrorCode to the HTTP status the API layer should
// respond with. Unknown codes map to 500.
func HTTPStatusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeDocumentTypeUnsupported,
		ErrCodeDocumentEmpty, ErrCodeSameDocument:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeDocumentNotFound, ErrCodeComparisonNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeDocumentTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable, ErrCodeOracleUnavailable, ErrCodeScorerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the module prefix of a code ("COMMON", "DOC", "CMP",
// "LLM") for use as a metric label.
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			return s[:i]
		}
	}
	return s
}

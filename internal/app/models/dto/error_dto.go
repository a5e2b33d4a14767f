package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	ErrorCodeValidationFailed     ErrorCode = "VAL_001"
	ErrorCodeInvalidCredentials   ErrorCode = "AUTH_001"
	ErrorCodeUnauthorized         ErrorCode = "AUTH_002"
	ErrorCodeInvalidToken         ErrorCode = "AUTH_003"
	ErrorCodeExpiredToken         ErrorCode = "AUTH_004"
	ErrorCodeForbidden            ErrorCode = "AUTH_005"
	ErrorCodeResourceNotFound     ErrorCode = "RES_001"
	ErrorCodeResourceConflict     ErrorCode = "RES_002"
	ErrorCodeTooManyRequests      ErrorCode = "REQ_001"
	ErrorCodeInternalServer       ErrorCode = "SRV_001"
	ErrorCodeDatabaseError        ErrorCode = "SRV_002"
	ErrorCodeStorageError         ErrorCode = "SRV_003"
	ErrorCodeExternalServiceError ErrorCode = "SRV_004"
	ErrorCodeNotConfigured        ErrorCode = "SRV_005"
)

// ErrorResponse is the body of every failed request. Details holds a public
// detail when one exists, otherwise the underlying cause in development mode.
type ErrorResponse struct {
	Error   string      `json:"error" example:"Student not found"`
	Code    ErrorCode   `json:"code,omitempty" example:"RES_001"`
	Field   string      `json:"field,omitempty" example:"degreeType"`
	Details interface{} `json:"details,omitempty"`
}

// NewErrorResponse creates an error body with a code
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{Error: message, Code: code}
}

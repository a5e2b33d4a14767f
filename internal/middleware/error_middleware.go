package middleware

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

var developmentMode atomic.Bool

// SetDevelopmentMode controls whether underlying error causes are returned to clients
func SetDevelopmentMode(enabled bool) {
	developmentMode.Store(enabled)
}

type errorClass struct {
	sentinel error
	status   int
	code     dto.ErrorCode
	message  string
}

// errorClasses is checked in order; the first sentinel matched by errors.Is wins
var errorClasses = []errorClass{
	{apperrors.ErrValidation, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid request"},
	{apperrors.ErrNoFieldsToUpdate, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "No fields to update"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrSessionRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Session has ended"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceConflict, "Resource already exists"},
	{apperrors.ErrUpstreamService, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Upstream service failed"},
	{apperrors.ErrUpstreamStorage, http.StatusInternalServerError, dto.ErrorCodeStorageError, "File storage failed"},
	{apperrors.ErrNotConfigured, http.StatusInternalServerError, dto.ErrorCodeNotConfigured, "Service is not configured"},
	{apperrors.ErrPersistence, http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Database error"},
}

var internalError = errorClass{nil, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"}

func classify(err error) errorClass {
	for _, class := range errorClasses {
		if errors.Is(err, class.sentinel) {
			return class
		}
	}
	return internalError
}

// ErrorStatus returns the HTTP status HandleAPIError would send for err
func ErrorStatus(err error) int {
	return classify(err).status
}

// HandleAPIError writes the error body for err and aborts the request
func HandleAPIError(c *gin.Context, err error) {
	class := classify(err)
	resp := dto.ErrorResponse{
		Error: apperrors.Message(err, class.message),
		Code:  class.code,
	}

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if field, ok := custom.Details["field"].(string); ok {
			resp.Field = field
		}
		if custom.Detail != "" {
			resp.Details = custom.Detail
		} else if developmentMode.Load() && custom.Cause != nil {
			resp.Details = custom.Cause.Error()
		}
	} else if developmentMode.Load() {
		resp.Details = err.Error()
	}

	if class.status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(RequestIDKey)).
			Int("status", class.status).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(class.status, resp)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/fitlog/internal/validate"
	"github.com/gin-gonic/gin"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidJSON        = "INVALID_JSON"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

type APIError struct {
	Code      string                `json:"code"`
	Message   string                `json:"message"`
	RequestID string                `json:"requestId,omitempty"`
	Details   interface{}           `json:"details,omitempty"`
	Errors    []validate.FieldError `json:"errors,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondValidation writes a 422 listing every failed field.
func RespondValidation(ctx *gin.Context, errs validate.Errors) {
	ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error": APIError{
			Code:      CodeValidation,
			Message:   "Validation failed",
			RequestID: requestIDFrom(ctx),
			Errors:    errs,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, CodeNotFound, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

// RespondInternal logs err with the request id and hides it from the client.
func RespondInternal(ctx *gin.Context, message string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), message,
		"err", err,
		"request_id", requestIDFrom(ctx),
	)
	RespondError(ctx, http.StatusInternalServerError, CodeInternal, message, nil)
}

// NotFoundRoute answers unmatched routes.
func NotFoundRoute(ctx *gin.Context) {
	RespondNotFound(ctx, "Route "+ctx.Request.URL.RequestURI()+" not found")
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stenosis-api/pkg/errors"
)

const codeBodyTooLarge = "request_too_large"

// statusFor выбирает HTTP-статус по типу ошибки.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeDecode:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeAmbiguousSegmentation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage собирает сообщения AppError по цепочке, без деталей чужих ошибок.
func publicMessage(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		if appErr, ok := e.(*apperrors.AppError); ok && appErr.Message != "" {
			parts = append(parts, appErr.Message)
		}
	}
	if len(parts) == 0 {
		return "internal server error"
	}
	return strings.Join(parts, ": ")
}

func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	code := string(apperrors.TypeOf(err))
	msg := publicMessage(err)
	if status == http.StatusRequestEntityTooLarge {
		code = codeBodyTooLarge
		msg = "request body is too large"
	}

	attrs := []any{
		"request_id", c.GetString(requestIDKey),
		"status", status,
		"code", code,
		"error", err,
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Context) > 0 {
		attrs = append(attrs, "context", appErr.Context)
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", attrs...)
	} else {
		logger.Warn("Request rejected", attrs...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   msg,
		Code:    code,
	})
}

package errors

import (
	"errors"
	"fmt"
	"maps"
)

// ErrorType категория ошибки, по ней API выбирает HTTP-статус.
type ErrorType string

const (
	ErrorTypeModelNotLoaded        ErrorType = "model_not_loaded"
	ErrorTypeValidation            ErrorType = "validation_error"
	ErrorTypeDecode                ErrorType = "decode_error"
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypeAmbiguousSegmentation ErrorType = "ambiguous_segmentation"
	ErrorTypeExternal              ErrorType = "external_service_error"
	ErrorTypeInternal              ErrorType = "internal_error"
	ErrorTypeConfiguration         ErrorType = "configuration_error"
)

// AppError ошибка приложения с типом и контекстом.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext добавляет поле контекста к ошибке.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap оборачивает ошибку; контекст вложенной AppError сохраняется.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    errType,
			Message: message,
			Err:     appErr,
			Context: maps.Clone(appErr.Context),
		}
	}

	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Is проверяет тип самой внешней AppError в цепочке.
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf возвращает тип ошибки или ErrorTypeInternal для чужих ошибок.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

var ErrModelNotLoaded = New(ErrorTypeModelNotLoaded, "model is not loaded")

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func WrapValidationError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeValidation, message)
}

func NewDecodeError(message string) *AppError {
	return New(ErrorTypeDecode, message)
}

func WrapDecodeError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeDecode, message)
}

func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func WrapNotFoundError(err error, resource string) *AppError {
	return Wrap(err, ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

func NewAmbiguousSegmentationError(shapes int) *AppError {
	return New(ErrorTypeAmbiguousSegmentation,
		fmt.Sprintf("expected at most 2 vessel cross-sections, found %d", shapes)).
		WithContext("shapes", shapes)
}

func NewExternalError(message string) *AppError {
	return New(ErrorTypeExternal, message)
}

func WrapExternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeExternal, message)
}

func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message)
}

func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message)
}

func NewConfigurationError(message string) *AppError {
	return New(ErrorTypeConfiguration, message)
}

func WrapConfigurationError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeConfiguration, message)
}

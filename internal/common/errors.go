package common

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnsupportedInput = "UNSUPPORTED_INPUT"
	CodeExtraction       = "EXTRACTION_ERROR"
	CodeRemoteService    = "REMOTE_SERVICE_ERROR"
	CodeConfiguration    = "CONFIG_ERROR"
	CodeRender           = "RENDER_ERROR"
	CodeTimeout          = "TIMEOUT"
)

// Source narrows an extraction failure down to the backend that produced it.
type Source string

const (
	SourceLocalEngine       Source = "local-engine"
	SourceRemoteService     Source = "remote-service"
	SourceMalformedDocument Source = "malformed-document"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Source  Source
	Cause   error
}

func (e *AppError) Error() string {
	code := e.Code
	if e.Source != "" {
		code += "(" + string(e.Source) + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the code sentinels below, so errors.Is(err, ErrTimeout) works on any wrapped AppError.
func (e *AppError) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.code == e.Code
}

type sentinel struct{ code string }

func (s *sentinel) Error() string { return s.code }

var (
	ErrUnsupportedInput = &sentinel{CodeUnsupportedInput}
	ErrExtraction       = &sentinel{CodeExtraction}
	ErrRemoteService    = &sentinel{CodeRemoteService}
	ErrConfiguration    = &sentinel{CodeConfiguration}
	ErrRender           = &sentinel{CodeRender}
	ErrTimeout          = &sentinel{CodeTimeout}
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrEmptyText    = errors.New("document produced no text")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewUnsupportedInputError(mediaType string) *AppError {
	if mediaType == "" {
		mediaType = "unknown"
	}
	return NewAppError(CodeUnsupportedInput, fmt.Sprintf("unsupported media type %q", mediaType), ErrInvalidInput)
}

func NewExtractionError(source Source, message string, cause error) *AppError {
	return &AppError{Code: CodeExtraction, Message: message, Source: source, Cause: cause}
}

func NewRemoteServiceError(message string, cause error) *AppError {
	return NewAppError(CodeRemoteService, message, cause)
}

func NewConfigurationError(message string, cause error) *AppError {
	return NewAppError(CodeConfiguration, message, cause)
}

func NewRenderError(message string, cause error) *AppError {
	return NewAppError(CodeRender, message, cause)
}

func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{Code: CodeTimeout, Message: message, Source: SourceRemoteService, Cause: cause}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// SourceOf returns the extraction source recorded on err, or "".
func SourceOf(err error) Source {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Source
	}
	return ""
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CodeExtraction    = "EXTRACTION_ERROR"
	CodeCapability    = "CAPABILITY_ERROR"
	CodeConfiguration = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Stage   string // originating pipeline step, e.g. "extract.ocr", "summarize.chunk[2]"
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	prefix := e.Code
	if e.Stage != "" {
		prefix = e.Code + " [" + e.Stage + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrExtraction) match any AppError carrying the extraction code.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrExtraction:
		return e.Code == CodeExtraction
	case ErrCapability:
		return e.Code == CodeCapability
	case ErrConfiguration:
		return e.Code == CodeConfiguration
	}
	return false
}

// Common application errors
var (
	ErrExtraction    = errors.New("extraction failed")
	ErrCapability    = errors.New("capability failed")
	ErrConfiguration = errors.New("invalid configuration")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternal      = errors.New("internal error")
	ErrDatabase      = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewExtractionError(stage, message string, cause error) *AppError {
	return &AppError{Code: CodeExtraction, Stage: stage, Message: message, Cause: cause}
}

func NewCapabilityError(stage, message string, cause error) *AppError {
	return &AppError{Code: CodeCapability, Stage: stage, Message: message, Cause: cause}
}

func NewConfigError(stage, message string, cause error) *AppError {
	return &AppError{Code: CodeConfiguration, Stage: stage, Message: message, Cause: cause}
}

// StageOf returns the stage recorded on the first AppError in err's chain.
func StageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// ToStatus maps the error taxonomy onto gRPC status codes.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrExtraction):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrCapability):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return InternalError(err.Error())
	}
}

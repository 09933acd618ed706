package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors.
// Kind is one of the sentinels below so callers can errors.Is on it
// while Cause keeps the underlying error chain.
type AppError struct {
	Code    string
	Message string
	Kind    error
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Adaptation pipeline errors
var (
	ErrMaterialNotFound  = errors.New("material not found")
	ErrProfileNotFound   = errors.New("student profile not found")
	ErrProfileInvalid    = errors.New("student profile invalid")
	ErrExtraction        = errors.New("text extraction failed")
	ErrNoExtractableText = errors.New("document has no extractable text")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrLLMInvocation     = errors.New("llm invocation failed")
	ErrLLMResponseFormat = errors.New("llm response format invalid")
	ErrRender            = errors.New("document render failed")
	ErrStorage           = errors.New("object storage failed")
)

var errorCodes = map[error]string{
	ErrNotFound:          "NOT_FOUND",
	ErrInvalidInput:      "INVALID_INPUT",
	ErrInternal:          "INTERNAL",
	ErrDatabase:          "DATABASE_ERROR",
	ErrValidation:        "VALIDATION_ERROR",
	ErrMaterialNotFound:  "MATERIAL_NOT_FOUND",
	ErrProfileNotFound:   "PROFILE_NOT_FOUND",
	ErrProfileInvalid:    "PROFILE_INVALID",
	ErrExtraction:        "EXTRACTION_ERROR",
	ErrNoExtractableText: "EXTRACTION_ERROR",
	ErrUnsupportedFormat: "UNSUPPORTED_FORMAT",
	ErrLLMInvocation:     "LLM_INVOCATION_ERROR",
	ErrLLMResponseFormat: "LLM_RESPONSE_FORMAT_ERROR",
	ErrRender:            "RENDER_ERROR",
	ErrStorage:           "STORAGE_ERROR",
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewDomainError builds an AppError whose code is derived from kind.
func NewDomainError(kind error, message string, cause error) *AppError {
	code, ok := errorCodes[kind]
	if !ok {
		code = "INTERNAL"
	}
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
		Cause:   cause,
	}
}

// IsBatchFatal reports whether err must abort a whole batch rather than a single profile.
func IsBatchFatal(err error) bool {
	return errors.Is(err, ErrMaterialNotFound) ||
		errors.Is(err, ErrExtraction) ||
		errors.Is(err, ErrUnsupportedFormat)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps a domain error to a gRPC status error. Errors that already
// carry a status are returned unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrMaterialNotFound), errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrExtraction), errors.Is(err, ErrUnsupportedFormat):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation), errors.Is(err, ErrProfileInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

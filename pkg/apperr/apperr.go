// Package apperr defines the typed errors surfaced by the ingestion,
// enrichment and access-control paths. Handlers map Code to an HTTP status;
// services and tests branch on Kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error independent of its HTTP mapping.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindMediaProbe          Kind = "media_probe"
	KindDurationExceeded    Kind = "duration_exceeded"
	KindStorage             Kind = "storage"
	KindDownload            Kind = "download"
	KindTranscription       Kind = "transcription"
	KindQuestionGen         Kind = "question_gen"
	KindPermissionDenied    Kind = "permission_denied"
	KindInsufficientCredits Kind = "insufficient_credits"
	KindConflict            Kind = "conflict"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

// AppError carries the error kind, HTTP code, originating operation and cause.
type AppError struct {
	Kind    Kind
	Code    int
	Op      string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// DurationError is the cause attached to a DurationExceeded error.
type DurationError struct {
	ActualSeconds float64
	MaxSeconds    float64
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("video too long (%.0fs): limit %.0fs", e.ActualSeconds, e.MaxSeconds)
}

func Validation(op, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: http.StatusBadRequest, Op: op, Message: message}
}

func MediaProbe(op string, err error, message string) *AppError {
	return &AppError{Kind: KindMediaProbe, Code: http.StatusBadRequest, Op: op, Message: message, Err: err}
}

func DurationExceeded(op string, actual, max float64) *AppError {
	cause := &DurationError{ActualSeconds: actual, MaxSeconds: max}
	return &AppError{Kind: KindDurationExceeded, Code: http.StatusBadRequest, Op: op, Message: cause.Error(), Err: cause}
}

func Storage(op string, err error, message string) *AppError {
	return &AppError{Kind: KindStorage, Code: http.StatusInternalServerError, Op: op, Message: message, Err: err}
}

func Download(op string, err error, message string) *AppError {
	return &AppError{Kind: KindDownload, Code: http.StatusInternalServerError, Op: op, Message: message, Err: err}
}

func Transcription(op string, err error, message string) *AppError {
	return &AppError{Kind: KindTranscription, Code: http.StatusInternalServerError, Op: op, Message: message, Err: err}
}

func QuestionGen(op string, err error, message string) *AppError {
	return &AppError{Kind: KindQuestionGen, Code: http.StatusInternalServerError, Op: op, Message: message, Err: err}
}

func PermissionDenied(op, message string) *AppError {
	return &AppError{Kind: KindPermissionDenied, Code: http.StatusForbidden, Op: op, Message: message}
}

func InsufficientCredits(op, message string) *AppError {
	return &AppError{Kind: KindInsufficientCredits, Code: http.StatusPaymentRequired, Op: op, Message: message}
}

func Conflict(op, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: http.StatusConflict, Op: op, Message: message}
}

func NotFound(op, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Op: op, Message: message}
}

func Internal(op string, err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Code: http.StatusInternalServerError, Op: op, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf returns the HTTP status for err, or 500 for untyped errors.
func CodeOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies where in the pipeline an analysis failed.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTooLarge   Kind = "payload_too_large"
	KindStorage    Kind = "storage"
	KindLaunch     Kind = "process_launch"
	KindProcess    Kind = "process_failure"
	KindDecode     Kind = "decode"
)

const unknownError = "Unknown error"

// AnalysisError is the single error shape produced by every pipeline stage.
// Only the fields relevant to its Kind are sent to the client.
type AnalysisError struct {
	Kind    Kind
	Message string
	Detail  string
	Raw     string
	Stderr  string
	Code    *int
	Err     error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	if e.Code != nil {
		msg += fmt.Sprintf(" (exit code %d)", *e.Code)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *AnalysisError) Status() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindTooLarge:
		return fiber.StatusRequestEntityTooLarge
	}
	return fiber.StatusInternalServerError
}

// Body builds the JSON response body for the error kind.
func (e *AnalysisError) Body() fiber.Map {
	body := fiber.Map{"error": e.Message}
	switch e.Kind {
	case KindLaunch:
		body["detail"] = e.Detail
	case KindProcess:
		body["detail"] = e.Detail
		if e.Code != nil {
			body["code"] = *e.Code
		}
	case KindDecode:
		body["raw"] = e.Raw
		body["stderr"] = e.Stderr
	}
	return body
}

// As extracts an *AnalysisError from err's chain.
func As(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is an *AnalysisError of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

var (
	ErrInvalidBody = func(err error) *AnalysisError {
		return &AnalysisError{Kind: KindValidation, Message: "Invalid request body", Err: err}
	}
	ErrBodyTooLarge = func(size, limit int64) *AnalysisError {
		return &AnalysisError{
			Kind:    KindTooLarge,
			Message: "Request body too large",
			Err:     fmt.Errorf("body is %d bytes, limit is %d", size, limit),
		}
	}
	ErrNoImage = func() *AnalysisError {
		return &AnalysisError{Kind: KindValidation, Message: "No image provided"}
	}
	ErrInvalidImage = func(err error) *AnalysisError {
		return &AnalysisError{Kind: KindValidation, Message: "Invalid image encoding", Err: err}
	}
	ErrNoVideo = func(err error) *AnalysisError {
		return &AnalysisError{Kind: KindValidation, Message: "No video file uploaded", Err: err}
	}
	ErrVideoTooLarge = func(size, limit int64) *AnalysisError {
		return &AnalysisError{
			Kind:    KindValidation,
			Message: "Video file too large",
			Err:     fmt.Errorf("upload is %d bytes, limit is %d", size, limit),
		}
	}
	ErrInvalidMode = func(mode string) *AnalysisError {
		return &AnalysisError{Kind: KindValidation, Message: "Invalid mode", Err: fmt.Errorf("mode %q", mode)}
	}
	ErrSaveImage = func(err error) *AnalysisError {
		return &AnalysisError{Kind: KindStorage, Message: "Failed to save image", Err: err}
	}
	ErrSaveVideo = func(err error) *AnalysisError {
		return &AnalysisError{Kind: KindStorage, Message: "Failed to save video", Err: err}
	}
	ErrLaunch = func(err error) *AnalysisError {
		return &AnalysisError{
			Kind:    KindLaunch,
			Message: "Failed to start analysis process",
			Detail:  err.Error(),
			Err:     err,
		}
	}
	ErrProcess = func(code int, stderr string) *AnalysisError {
		if stderr == "" {
			stderr = unknownError
		}
		return &AnalysisError{
			Kind:    KindProcess,
			Message: "Analysis process failed",
			Detail:  stderr,
			Code:    &code,
		}
	}
	ErrTimeout = func(timeout time.Duration, stderr string) *AnalysisError {
		code := -1
		detail := fmt.Sprintf("analysis timed out after %s", timeout)
		if stderr != "" {
			detail += ": " + stderr
		}
		return &AnalysisError{
			Kind:    KindProcess,
			Message: "Analysis process failed",
			Detail:  detail,
			Code:    &code,
		}
	}
	ErrDecode = func(err error, raw, stderr string) *AnalysisError {
		return &AnalysisError{
			Kind:    KindDecode,
			Message: "Invalid analysis output",
			Raw:     raw,
			Stderr:  stderr,
			Err:     err,
		}
	}
)

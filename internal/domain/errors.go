package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrPermissionDenied = errors.New("permission denied")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (user, branch, follow, ...)
	ResourceID   string // ID of the existing/conflicting resource, empty if unknown
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// PermissionDeniedError is returned when a visibility or capability check fails.
// It carries enough context for the caller to render a message.
type PermissionDeniedError struct {
	Action     string
	TargetKind string
	TargetID   string
	Reason     string
}

func (e *PermissionDeniedError) Error() string {
	msg := fmt.Sprintf("permission denied: %s on %s %s", e.Action, e.TargetKind, e.TargetID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *PermissionDeniedError) StatusCode() int {
	return http.StatusForbidden
}

// Is matches both ErrPermissionDenied and the generic ErrForbidden
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied || target == ErrForbidden
}

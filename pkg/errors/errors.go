// Package errors provides custom error types for locsync.
// Every fatal outcome of a run maps to one sentinel, so callers can use
// errors.Is without caring which connector produced the failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join re-export the standard library helpers.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// System identifies which remote system an error came from.
type System string

const (
	// SystemSource is the source of record (ServiceNow).
	SystemSource System = "servicenow"
	// SystemTarget is the infrastructure management system (Infoblox).
	SystemTarget System = "infoblox"
)

// ResourceAttribute is the resource name used for extensible attribute lookups.
const ResourceAttribute = "extensible attribute"

// Sentinel errors, one per failure class of a run.
var (
	// ErrInvalidConfig indicates missing or invalid required settings
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceAuth indicates the source of record rejected the credentials
	ErrSourceAuth = errors.New("source authentication failed")

	// ErrSourceUnavailable indicates the source of record could not be read
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAttributeNotFound indicates the target has no attribute with the given name
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrTargetAuth indicates the target rejected the credentials
	ErrTargetAuth = errors.New("target authentication failed")

	// ErrTargetUnavailable indicates the target could not be reached
	ErrTargetUnavailable = errors.New("target unavailable")

	// ErrTargetRejected indicates the target refused a write
	ErrTargetRejected = errors.New("target rejected update")

	// ErrUnsafeWrite indicates a write was refused by the safety threshold
	ErrUnsafeWrite = errors.New("unsafe write refused")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")
)

// ConfigError represents a configuration error. Keys lists every
// offending setting so an operator can fix them in one pass.
type ConfigError struct {
	Component string
	Keys      []string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if len(e.Keys) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Keys, ", "))
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ValidationError represents a single invalid setting
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success HTTP response from a remote system
type APIError struct {
	System     System
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.System, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.System, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == authSentinel(e.System)
	case e.StatusCode == 429 || e.StatusCode >= 500:
		return target == unavailableSentinel(e.System)
	}
	return false
}

// Retryable reports whether repeating the request could succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewAPIError creates a new APIError
func NewAPIError(system System, statusCode int, message string) *APIError {
	return &APIError{
		System:     system,
		StatusCode: statusCode,
		Message:    message,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	System  System
	Method  string // "basic", "apikey"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error for %s (%s): %s", e.System, e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == authSentinel(e.System)
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(system System, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		System:  system,
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// UnavailableError represents a remote system that could not be read or written,
// after any retry allowance was used up.
type UnavailableError struct {
	System    System
	Operation string
	Err       error
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable during %s: %v", e.System, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UnavailableError) Is(target error) bool {
	return target == unavailableSentinel(e.System)
}

// NewUnavailableError creates a new UnavailableError
func NewUnavailableError(system System, operation string, err error) *UnavailableError {
	return &UnavailableError{System: system, Operation: operation, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	if target == ErrAttributeNotFound {
		return e.Resource == ResourceAttribute
	}
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// RejectedError represents a write the target refused
type RejectedError struct {
	System     System
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected update (status %d): %s", e.System, e.StatusCode, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RejectedError) Is(target error) bool {
	return target == ErrTargetRejected
}

// NewRejectedError creates a new RejectedError
func NewRejectedError(system System, statusCode int, message string, err error) *RejectedError {
	return &RejectedError{
		System:     system,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// UnsafeWriteError is returned when the desired value set is smaller than the
// configured minimum and the destructive write was skipped.
type UnsafeWriteError struct {
	Attribute string
	Desired   int
	Minimum   int
}

// Error implements the error interface
func (e *UnsafeWriteError) Error() string {
	return fmt.Sprintf("refusing to replace %s with %d values (minimum %d)", e.Attribute, e.Desired, e.Minimum)
}

// Is implements errors.Is support
func (e *UnsafeWriteError) Is(target error) bool {
	return target == ErrUnsafeWrite
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "upload"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsAuth checks if an error is an authentication failure on either side
func IsAuth(err error) bool {
	return errors.Is(err, ErrSourceAuth) || errors.Is(err, ErrTargetAuth)
}

// IsUnavailable checks if an error indicates an unreachable system on either side
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrTargetUnavailable)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAttributeNotFound)
}

// IsRejected checks if an error is a refused write
func IsRejected(err error) bool {
	return errors.Is(err, ErrTargetRejected)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

func authSentinel(s System) error {
	if s == SystemTarget {
		return ErrTargetAuth
	}
	return ErrSourceAuth
}

func unavailableSentinel(s System) error {
	if s == SystemTarget {
		return ErrTargetUnavailable
	}
	return ErrSourceUnavailable
}

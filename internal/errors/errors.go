package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ConfigurationError reports a missing or invalid setting. It is fatal for
// every request until the process is restarted with a fixed configuration.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
	}
}

func IsConfigurationError(err error) (*ConfigurationError, bool) {
	var ce *ConfigurationError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// UpstreamFetchError is returned when a downstream API answers with a
// non-2xx status.
type UpstreamFetchError struct {
	Resource   string
	StatusCode int
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetching %s: upstream responded with status %d", e.Resource, e.StatusCode)
}

func NewUpstreamFetchError(resource string, statusCode int) *UpstreamFetchError {
	return &UpstreamFetchError{
		Resource:   resource,
		StatusCode: statusCode,
	}
}

func IsUpstreamFetchError(err error) (*UpstreamFetchError, bool) {
	var ue *UpstreamFetchError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

type MalformedResponseError struct {
	Resource string
	Cause    error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s response: %v", e.Resource, e.Cause)
	}
	return fmt.Sprintf("malformed %s response", e.Resource)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

func NewMalformedResponseError(resource string, cause error) *MalformedResponseError {
	return &MalformedResponseError{
		Resource: resource,
		Cause:    cause,
	}
}

func IsMalformedResponseError(err error) (*MalformedResponseError, bool) {
	var me *MalformedResponseError
	if stderrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Resource string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("requesting %s: %v", e.Resource, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func NewTransportError(resource string, cause error) *TransportError {
	return &TransportError{
		Resource: resource,
		Cause:    cause,
	}
}

func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// MissingDependencyError marks a step that could not run because an earlier
// response lacked the identifier it needs.
type MissingDependencyError struct {
	Resource   string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("cannot fetch %s: %s is missing", e.Resource, e.Dependency)
}

func NewMissingDependencyError(resource, dependency string) *MissingDependencyError {
	return &MissingDependencyError{
		Resource:   resource,
		Dependency: dependency,
	}
}

func IsMissingDependencyError(err error) (*MissingDependencyError, bool) {
	var de *MissingDependencyError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

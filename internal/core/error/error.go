package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes catalog search backend failures.
	CatalogErrorMessage = "product catalog unavailable"
	// SynthesisErrorMessage describes speech synthesis failures.
	SynthesisErrorMessage = "speech synthesis failed"
)

// Sentinel errors for the failure taxonomy. Wrapped errors produced by the
// constructors below match these via errors.Is.
var (
	// ErrConfiguration indicates a required credential or setting is missing.
	// Fatal at startup, never produced mid-request.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownTool indicates the decision model requested a tool that does
	// not exist. Fails the current turn only.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrCatalogUnavailable indicates the search backend failed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrSynthesisFailure indicates a network or HTTP failure from the speech
	// service.
	ErrSynthesisFailure = errors.New("synthesis failure")
	// ErrToolLoopExceeded indicates the decide/act cycle did not converge
	// within the configured bound.
	ErrToolLoopExceeded = errors.New("tool loop exceeded")
)

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewConfiguration reports a missing required setting. Callers treat this as
// fatal during startup.
func NewConfiguration(setting string) *Error {
	return New(
		fmt.Errorf("%w: %s is not set", ErrConfiguration, setting),
		http.StatusInternalServerError,
		"missing required configuration",
	)
}

// NewUnknownTool reports a tool invocation whose name is not registered.
func NewUnknownTool(name string) *Error {
	return New(
		fmt.Errorf("%w: %q", ErrUnknownTool, name),
		http.StatusBadGateway,
		"model requested a tool that does not exist",
	)
}

// NewToolLoopExceeded reports that the orchestrator hit its decide-step bound
// without the model converging on a final answer.
func NewToolLoopExceeded(limit int) *Error {
	return New(
		fmt.Errorf("%w: limit %d", ErrToolLoopExceeded, limit),
		http.StatusBadGateway,
		"conversation did not converge within the tool call budget",
	)
}

// WrapCatalog wraps a search backend failure. Catalog errors propagate as
// turn-level failures rather than silently returning empty results.
func WrapCatalog(err error) *Error {
	if err == nil {
		return nil
	}
	return New(
		fmt.Errorf("%w: %v", ErrCatalogUnavailable, err),
		http.StatusBadGateway,
		CatalogErrorMessage,
	)
}

// WrapSynthesis wraps a speech service failure, preserving the upstream HTTP
// status when one is known (0 falls back to 502).
func WrapSynthesis(err error, upstreamStatus int) *Error {
	if err == nil {
		return nil
	}
	status := upstreamStatus
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(
		fmt.Errorf("%w: %v", ErrSynthesisFailure, err),
		status,
		SynthesisErrorMessage,
	)
}

// StatusOf extracts the HTTP status carried by an error chain, defaulting to
// 500 for plain errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

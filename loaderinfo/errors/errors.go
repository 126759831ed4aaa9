package errors

import "fmt"

// Error types for loader info operations
var (
	// ErrConstructionForbidden is returned when script code tries to instantiate LoaderInfo directly
	ErrConstructionForbidden = &LoaderInfoError{Code: "CONSTRUCTION_FORBIDDEN", Message: "LoaderInfo cannot be constructed"}

	// ErrStageUnsupported is returned when a movie-only property is read on the stage's loader info
	ErrStageUnsupported = &LoaderInfoError{Code: "STAGE_UNSUPPORTED", Message: "property not available on the stage's loader info"}

	// ErrReconstructionInvariant is returned when rebuilding a movie's bytes produced an inconsistent layout
	ErrReconstructionInvariant = &LoaderInfoError{Code: "RECONSTRUCTION_INVARIANT_VIOLATED", Message: "movie byte reconstruction invariant violated"}

	// ErrInvalidStream is returned when a LoaderInfo holds no recognised loader stream
	ErrInvalidStream = &LoaderInfoError{Code: "INVALID_LOADER_STREAM", Message: "loader info has no valid loader stream"}

	// ErrPropertyNotFound is returned when a property name is not part of LoaderInfo
	ErrPropertyNotFound = &LoaderInfoError{Code: "PROPERTY_NOT_FOUND", Message: "property not found"}

	// ErrMovieNotFound is returned when a movie digest is not present in storage
	ErrMovieNotFound = &LoaderInfoError{Code: "MOVIE_NOT_FOUND", Message: "movie not found"}

	// ErrLoadFailed is returned when movie bytes cannot be acquired or decoded
	ErrLoadFailed = &LoaderInfoError{Code: "LOAD_FAILED", Message: "failed to load movie"}
)

// LoaderInfoError represents a structured error in loader info operations
type LoaderInfoError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *LoaderInfoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LoaderInfoError) Unwrap() error {
	return e.Cause
}

// Is matches any LoaderInfoError carrying the same code, so derived errors
// still satisfy errors.Is against the sentinels above.
func (e *LoaderInfoError) Is(target error) bool {
	t, ok := target.(*LoaderInfoError)
	return ok && t.Code == e.Code
}

// WithCause adds a cause to the error
func (e *LoaderInfoError) WithCause(cause error) *LoaderInfoError {
	return &LoaderInfoError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *LoaderInfoError) WithDetail(key string, value interface{}) *LoaderInfoError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &LoaderInfoError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *LoaderInfoError) WithMessage(message string) *LoaderInfoError {
	return &LoaderInfoError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// NewStageUnsupportedError reports that the stage's loader info has no value
// for property. what names the missing thing, e.g. "a frame rate".
func NewStageUnsupportedError(property, what string) error {
	return ErrStageUnsupported.
		WithMessage(fmt.Sprintf("The stage's loader info does not have %s", what)).
		WithDetail("property", property)
}

// NewReconstructionError reports a broken offset or length assumption.
func NewReconstructionError(reason string, details map[string]interface{}) error {
	err := ErrReconstructionInvariant.WithMessage(reason)
	for k, v := range details {
		err = err.WithDetail(k, v)
	}
	return err
}

// IsLoaderInfoError checks if an error is a LoaderInfoError
func IsLoaderInfoError(err error) bool {
	_, ok := err.(*LoaderInfoError)
	return ok
}

// GetErrorCode extracts the error code from a LoaderInfoError
func GetErrorCode(err error) string {
	if liErr, ok := err.(*LoaderInfoError); ok {
		return liErr.Code
	}
	return ""
}

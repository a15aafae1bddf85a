package services

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// UpstreamError means the external source (not a local record) is missing or
// failing: a nonexistent video id, a broken platform API. Distinct from
// NotFoundError on purpose.
type UpstreamError struct{ Message string }

func (e *UpstreamError) Error() string { return e.Message }

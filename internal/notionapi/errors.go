package notionapi

import (
	"errors"
	"fmt"
	"time"
)

// API error codes Notion returns in error bodies.
// https://developers.notion.com/reference/errors
const (
	CodeUnauthorized       = "unauthorized"
	CodeRestrictedResource = "restricted_resource"
	CodeObjectNotFound     = "object_not_found"
	CodeRateLimited        = "rate_limited"
	CodeValidationError    = "validation_error"
	CodeConflictError      = "conflict_error"
	CodeInternalServer     = "internal_server_error"
	CodeServiceUnavailable = "service_unavailable"
)

// APIError is a non-2xx response from the Notion API, surfaced after the
// client's bounded retries are exhausted.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notion api: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request later could succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsNotFound reports whether err is the API telling us the object does not
// exist or was never shared with the integration.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeObjectNotFound || apiErr.StatusCode == 404
}

// IsPermissionDenied reports token or sharing problems.
func IsPermissionDenied(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeUnauthorized || apiErr.Code == CodeRestrictedResource ||
		apiErr.StatusCode == 401 || apiErr.StatusCode == 403
}

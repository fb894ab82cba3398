package canonical

import (
	"errors"
	"fmt"
)

// Error kinds shared across the module. Operations that cannot proceed at all
// (missing session, bad OAuth state, missing lookup target) fail with one of
// these; failures inside a single list element are degraded locally instead.
var (
	// ErrAuthRequired means there is no live session. Callers should route
	// the user back to login rather than retry.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidState means an OAuth callback carried a state parameter that
	// does not match the value persisted at login time.
	ErrInvalidState = errors.New("invalid oauth state parameter")

	// ErrNotFound means a name-keyed template or report lookup matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrCapabilityUnsupported means the active provider does not implement
	// the requested operation (e.g. submitting reports on Feishu).
	ErrCapabilityUnsupported = errors.New("operation not supported by provider")

	// ErrMissingAPIKey means no completion API key is configured. Raised
	// before any network attempt.
	ErrMissingAPIKey = errors.New("ai api key is not configured")
)

// UpstreamError carries a non-2xx status from the backend or a completion
// provider, with whatever error message could be parsed from the body.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.Status, e.Message)
}

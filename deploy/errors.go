package deploy

import (
	"fmt"
	"time"
)

// ValidationError indicates a bad or missing input. It is raised before any
// remote call is made and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

// RequestError wraps a failed create/update/tag call with guidance for the
// operator. The underlying AWS error stays available via Unwrap.
type RequestError struct {
	Op       string
	Guidance string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Guidance, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StabilizationError indicates the service or its deployment reached a
// terminal bad state while waiting for stability.
type StabilizationError struct {
	Kind   string // "service" or "deployment"
	ID     string
	Status string
	Reason string
}

func (e *StabilizationError) Error() string {
	msg := fmt.Sprintf("%s %s reached status %s", e.Kind, e.ID, e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// TimeoutError indicates the stability wait ceiling was exceeded. The remote
// deployment is not cancelled and may still complete on its own.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for the service to stabilize; the deployment may still be in progress in ECS", e.After)
}

package presenton

import (
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeUnreachable = "SERVICE_UNREACHABLE"
	ErrCodeBadStatus   = "SERVICE_BAD_STATUS"
	ErrCodeMalformed   = "SERVICE_MALFORMED_PAYLOAD"
)

// ServiceError reports a failed interaction with the presentation service.
// It never surfaces to the end caller as a report failure: the export
// pipeline catches it and takes the fallback path.
type ServiceError struct {
	Code    string
	Message string
	Status  int
	cause   error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("presenton: %s (status %d)", e.Message, e.Status)
	}
	if e.cause != nil {
		return fmt.Sprintf("presenton: %s: %s", e.Message, e.cause)
	}
	return "presenton: " + e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// Transient reports whether retrying could help: connection failures and
// server-side errors are worth a retry, client errors and malformed
// payloads are not.
func (e *ServiceError) Transient() bool {
	switch e.Code {
	case ErrCodeUnreachable:
		return true
	case ErrCodeBadStatus:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

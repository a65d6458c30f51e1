package analysis

import (
	"fmt"
	"time"
)

// FallbackMessage is shown when the service fails without a usable detail.
const FallbackMessage = "An unknown error occurred."

// TransportError means no usable response was received.
type TransportError struct {
	Err     error
	Timeout bool
	After   time.Duration
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out after %s", e.After)
	}
	if e.Err == nil {
		return "request failed"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-success HTTP status from the analysis service.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return FallbackMessage
	}
	return e.Detail
}

// MalformedResultError is a success status whose body could not be decoded.
type MalformedResultError struct {
	Reason string
	Err    error
}

func (e *MalformedResultError) Error() string {
	return "malformed response from analysis service: " + e.Reason
}

func (e *MalformedResultError) Unwrap() error { return e.Err }

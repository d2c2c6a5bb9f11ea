package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeConfig indicates manifest or runtime configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodePrecondition indicates local state that blocks submission
	// (wallet unreadable, insufficient balance, uninitialized PDA)
	ErrCodePrecondition ErrorCode = "PRECONDITION"

	// ErrCodeValidation indicates payload validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeSimulation indicates a failed transaction simulation
	ErrCodeSimulation ErrorCode = "SIMULATION"

	// ErrCodeSubmission indicates send or on-chain execution errors
	ErrCodeSubmission ErrorCode = "SUBMISSION"

	// ErrCodeRPC indicates RPC transport errors
	ErrCodeRPC ErrorCode = "RPC"

	// ErrCodeTimeout indicates confirmation timeouts
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeVerification indicates a post-condition mismatch
	ErrCodeVerification ErrorCode = "VERIFICATION"

	// ErrCodeSupply indicates mint supply exhaustion
	ErrCodeSupply ErrorCode = "SUPPLY"

	// ErrCodeDatabase indicates run log errors
	ErrCodeDatabase ErrorCode = "DATABASE"

	// ErrCodeInternal indicates internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// ClientError is an error raised somewhere in the transaction pipeline.
// Operation names the on-chain instruction being driven, when known.
type ClientError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Operation string                 `json:"operation,omitempty"`
	Severity  Severity               `json:"severity"`
	Hint      *Hint                  `json:"hint,omitempty"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// New creates a new ClientError
func New(code ErrorCode, operation, message string, cause error) *ClientError {
	return &ClientError{
		Code:      code,
		Message:   message,
		Operation: operation,
		Severity:  determineSeverity(code),
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// Newf creates a new ClientError with a formatted message and no cause
func Newf(code ErrorCode, operation, format string, args ...interface{}) *ClientError {
	return New(code, operation, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *ClientError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Operation != "" {
		msg = fmt.Sprintf("[%s:%s] %s", e.Operation, e.Code, msg)
	} else {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.Hint != nil {
		msg = fmt.Sprintf("%s (hint: %s)", msg, e.Hint.Advice)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ClientError) WithContext(key string, value interface{}) *ClientError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithHint attaches a classified hint
func (e *ClientError) WithHint(h Hint) *ClientError {
	e.Hint = &h
	return e
}

// WithSeverity overrides the default severity
func (e *ClientError) WithSeverity(severity Severity) *ClientError {
	e.Severity = severity
	return e
}

// IsRetryable returns true if the error is retryable
func (e *ClientError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRPC, ErrCodeTimeout:
		return true
	default:
		return false
	}
}

func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeSupply, ErrCodeVerification, ErrCodeDatabase:
		return SeverityHigh
	case ErrCodeSubmission, ErrCodeSimulation, ErrCodeRPC, ErrCodeTimeout:
		return SeverityMedium
	case ErrCodeValidation, ErrCodeConfig, ErrCodePrecondition:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapClientError wraps an error as a ClientError if it isn't already one
func WrapClientError(err error, code ErrorCode, operation, message string) *ClientError {
	if err == nil {
		return nil
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		clientErr.WithContext("wrapped_message", message)
		if operation != "" && clientErr.Operation == "" {
			clientErr.Operation = operation
		}
		return clientErr
	}

	return New(code, operation, message, err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsCode checks if an error is a ClientError with specific code
func IsCode(err error, code ErrorCode) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost ClientError, or empty.
func CodeOf(err error) ErrorCode {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return ""
}

// HintOf returns the hint attached to err, classifying its text when no
// hint was attached upstream.
func HintOf(err error) (Hint, bool) {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Hint != nil {
		return *clientErr.Hint, true
	}
	return Classify(err)
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"too many requests",
	"rate limit",
	"blockhash not found",
	"eof",
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity of an error
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityInfo
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Severity
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "panic"), strings.Contains(errStr, "fatal"):
		return SeverityCritical
	case strings.Contains(errStr, "failed"), strings.Contains(errStr, "error"):
		return SeverityHigh
	case strings.Contains(errStr, "warning"):
		return SeverityMedium
	}
	return SeverityLow
}

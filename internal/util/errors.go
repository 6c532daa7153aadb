package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRunNotFound        = errors.New("run not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrRunNotCompleted    = errors.New("run is still in progress")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
)

// ConfigurationError marks a bad blueprint or prompt template. Fatal to the
// run at setup time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// GenerationFailure records one request that exhausted its attempts. It is
// reported on the run summary and never aborts the run.
type GenerationFailure struct {
	Number   int      `json:"number"`
	Pattern  string   `json:"pattern"`
	Attempts int      `json:"attempts"`
	Reasons  []string `json:"reasons"`
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("question %d (%s) failed after %d attempts: %s",
		e.Number, e.Pattern, e.Attempts, strings.Join(e.Reasons, "; "))
}

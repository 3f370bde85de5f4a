package database

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrClosed is returned when a handle is used after Close.
var ErrClosed = errors.New("database handle is closed")

// ConfigurationError is returned by Open when no valid handle can be built
// from the supplied options. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// QueryError wraps any failure that happens while building or running a query.
type QueryError struct {
	Op       string // "query", "exec", "ping" or "build"
	Strategy Strategy
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Strategy, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// HTTPError is the error payload returned by the SQL-over-HTTP endpoint.
type HTTPError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d: %s (sqlstate %s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func queryErr(op string, s Strategy, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Strategy: s, Err: err}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

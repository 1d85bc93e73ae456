package internal

import (
	"errors"
	"fmt"
)

// ErrMissingIdentity is returned when an operation needs the identity key and
// the auth flow has not deposited one yet.
var ErrMissingIdentity = errors.New("identity key not found")

// StorageError represents errors accessing the message store
type StorageError struct {
	Backend string // "file", "sqlite", "redis", "memory"
	Key     string
	Op      string // "get", "set", "delete", "open"
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s]: %s %s: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing data
type ParseError struct {
	Source string // "store", "gateway", "cookies"
	Key    string // storage key, endpoint or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GatewayError is the typed failure for any backend call: a transport error
// (Status is 0) or a non-2xx response.
type GatewayError struct {
	Op     string
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway error [%s]: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway error [%s]: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

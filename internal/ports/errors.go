package ports

import (
	"errors"
	"fmt"
)

// Errors reported by the store, cache and configuration adapters.
var (
	// ErrCacheCorrupted indicates a cached results blob that no longer decodes.
	ErrCacheCorrupted = errors.New("cache corrupted")

	// ErrConfigNotFound indicates that a named configuration file is absent.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrNotFound indicates that a queried record does not exist.
	ErrNotFound = errors.New("record not found")
)

// CacheError wraps a failed read, write or decode of a results cache entry.
type CacheError struct {
	// Key is the results cache key, e.g. "evalstats.results.get_results-7".
	Key string
	// Operation is one of get, set, delete, clear or decode.
	Operation string
	Err       error
}

// Error implements the error interface for CacheError.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CacheError) Unwrap() error { return e.Err }

// NewCacheError creates a CacheError.
func NewCacheError(key, operation string, err error) *CacheError {
	return &CacheError{Key: key, Operation: operation, Err: err}
}

// StoreError represents a failed storage query.
type StoreError struct {
	// Query names the Store method that failed.
	Query string

	// Err is the underlying driver or lookup error.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: query=%s, err=%v", e.Query, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a StoreError.
func NewStoreError(query string, err error) *StoreError {
	return &StoreError{Query: query, Err: err}
}

// ConfigError reports a configuration file or key that could not be loaded.
type ConfigError struct {
	// ConfigKey is a dotted key such as "cache.backend", or the path of the
	// configuration file when the file itself failed.
	ConfigKey string
	Err       error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{ConfigKey: key, Err: err}
}

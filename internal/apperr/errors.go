// Package apperr defines the error taxonomy shared by region adapters, the
// blob cache and the lookup orchestrator.
package apperr

import (
	"errors"
	"fmt"
)

// FetchError reports a transport failure or non-2xx response from an upstream
// source or from the blob store.
type FetchError struct {
	Region     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := "fetch failed"
	if e.Region != "" {
		msg = e.Region + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err as a FetchError for region.
func NewFetchError(region, url string, err error) *FetchError {
	return &FetchError{Region: region, URL: url, Err: err}
}

// ParseError reports a response that could not be parsed into the shape the
// adapter expects. An empty but well-formed response is not a ParseError.
type ParseError struct {
	Region string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Region + ": parse failed"
	}
	return e.Region + ": parse failed: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err as a ParseError for region.
func NewParseError(region string, err error) *ParseError {
	return &ParseError{Region: region, Err: err}
}

// UnsupportedRegionError reports a jurisdiction code with no registered adapter.
type UnsupportedRegionError struct {
	Code string
}

func (e *UnsupportedRegionError) Error() string {
	return fmt.Sprintf("unsupported region %q", e.Code)
}

// NotFoundError reports a cache miss for a blob key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blob %q not found", e.Key)
}

// IsFetch reports whether err (or any error in its chain) is a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParse reports whether err (or any error in its chain) is a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsUnsupportedRegion reports whether err (or any error in its chain) is an
// UnsupportedRegionError.
func IsUnsupportedRegion(err error) bool {
	var ue *UnsupportedRegionError
	return errors.As(err, &ue)
}

// IsNotFound reports whether err (or any error in its chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// Package testutil provides testing utilities for devplan.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")

	// ErrMockAPIError indicates a mock API error occurred (used in tests).
	ErrMockAPIError = errors.New("API error")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")

	// ErrMockGenFailed indicates a mock generation call failed (used in tests).
	ErrMockGenFailed = errors.New("generation failed")

	// ErrMockHostFailed indicates a mock repository host call failed (used in tests).
	ErrMockHostFailed = errors.New("repository host call failed")

	// ErrMockStoreUnavailable indicates a mock context store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("context store unavailable")
)

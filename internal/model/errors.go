package model

import "errors"

var (
	// Session related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// View related errors
	ErrViewNotFound       = errors.New("view not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrRecordNotFound     = errors.New("record not found")

	// Upstream related errors
	ErrUpstreamFailed = errors.New("upstream operation failed")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

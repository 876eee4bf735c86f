package model

import "errors"

// Errors returned by the acquisition pipeline. Callers classify with errors.Is.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrTickerNotInSnapshot = errors.New("ticker not in snapshot")
)

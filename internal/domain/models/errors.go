package models

import "errors"

// Error taxonomy surfaced by the forecast core. The HTTP layer maps each to a
// distinct status and code; none of these may be collapsed into a generic
// failure without its kind.
var (
	// ErrDataFetch indicates the upstream OHLCV source returned nothing or
	// malformed data.
	ErrDataFetch = errors.New("market data unavailable")

	// ErrInsufficientHistory indicates the series cannot fill the indicator
	// warm-up windows plus the model sequence length.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrModelUnavailable indicates no trained model/scaler is registered for
	// the requested instrument.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidRequest indicates the horizon or instrument identifier is
	// outside the supported range/set.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNumericDegeneracy is reserved for the guarded divide-by-zero cases in
	// feature derivation. It is absorbed internally by the documented guards
	// and only surfaces if a guard is explicitly disabled.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

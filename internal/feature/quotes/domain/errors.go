// Package domain defines domain-level errors for the quotes feature.
package domain

import "errors"

var (
	// ErrMissingCredential indicates that the selected quote provider requires an API key
	// and none is configured. It is a configuration error and is never retried.
	ErrMissingCredential = errors.New("quote provider api key is not configured")

	// ErrProviderFailure wraps transport and protocol failures from a quote provider.
	// The price cache retries these and finally degrades to the sentinel price.
	ErrProviderFailure = errors.New("quote provider request failed")

	// ErrUnknownProvider is returned when PRICE_PROVIDER names no known provider.
	ErrUnknownProvider = errors.New("unknown quote provider")
)

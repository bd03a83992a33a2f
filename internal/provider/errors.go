package provider

import "errors"

var (
	// ErrMissingAPIKey is returned when a required API key is not provided
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedProvider is returned when an unsupported provider type is specified
	ErrUnsupportedProvider = errors.New("unsupported generation provider")

	// ErrEmptyResponse is returned when the provider responds without any text
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrRateLimited is returned when provider rate limits are exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrProviderUnavailable is returned when a provider service is unavailable
	ErrProviderUnavailable = errors.New("generation provider is currently unavailable")
)

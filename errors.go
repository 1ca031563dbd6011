package clipsave

import "errors"

var (
	// ErrInvalidURL indicates input that is empty or fails the syntactic
	// pattern check for its platform.
	ErrInvalidURL = errors.New("invalid video URL")
	// ErrUnsupportedPlatform indicates a URL from no known platform, or a
	// platform with no registered providers.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrAlreadyInProgress indicates a resolution or download was requested
	// while a previous one is still in flight.
	ErrAlreadyInProgress = errors.New("operation already in progress")
	// ErrResolutionFailed indicates every provider for the platform was
	// tried and none produced a usable descriptor.
	ErrResolutionFailed = errors.New("all providers failed")
	// ErrDownloadFailed indicates every download strategy was tried and
	// none succeeded.
	ErrDownloadFailed = errors.New("all download strategies failed")
)

package domain

import "errors"

var (
	// ErrInitializationFailed wraps any catalog or model bootstrap error.
	// The engine stays uninitialized so the caller may retry.
	ErrInitializationFailed = errors.New("engine initialization failed")

	// ErrMovieNotFound is returned for lookups against an unknown movie id.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrModelUnavailable is returned when a prediction is requested before
	// a trained model exists.
	ErrModelUnavailable = errors.New("model unavailable")
)

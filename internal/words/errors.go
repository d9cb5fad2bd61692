package words

import "errors"

var (
	// ErrMissingConfig means the word backend cannot be constructed because
	// required connection settings are absent. This is a deployment problem;
	// it is reported on first use and never silently degraded.
	ErrMissingConfig = errors.New("word backend configuration missing")

	// ErrBackendUnavailable means the word-data backend could not be reached
	// or answered with a failure.
	ErrBackendUnavailable = errors.New("word backend unavailable")

	// ErrNoWordPair means the backend answered but had no usable pair for the
	// requested category. Callers treat it exactly like a backend failure: the
	// round cannot start.
	ErrNoWordPair = errors.New("no word pair available")
)

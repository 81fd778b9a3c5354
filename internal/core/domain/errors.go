package domain

import "errors"

var (
	// ErrSourceUnavailable means every configured song source failed.
	ErrSourceUnavailable = errors.New("domain: song sources unavailable")
	// ErrInsightFailed means the insight generator produced no usable text.
	ErrInsightFailed = errors.New("domain: insight generation failed")
	// ErrSessionNotFound is returned for unknown or evicted sessions.
	ErrSessionNotFound = errors.New("domain: session not found")
	// ErrSongNotFound is returned when an id is not in the loaded collection.
	ErrSongNotFound = errors.New("domain: song not found")
)

// SourceUnavailableMessage is shown when no source could deliver the catalog.
const SourceUnavailableMessage = "Failed to load songs from live API and local fallback. Please check your connection and the app configuration."

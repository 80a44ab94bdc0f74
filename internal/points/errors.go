package points

import "errors"

var (
	// ErrConfiguration is returned when a point id is unset or cannot be resolved in the store
	ErrConfiguration = errors.New("configuration error")
	// ErrRead is returned when a point could not be read or its value is invalid
	ErrRead = errors.New("read error")
	// ErrWrite is returned when a write could not be confirmed, even after the fallback value
	ErrWrite = errors.New("write error")
)

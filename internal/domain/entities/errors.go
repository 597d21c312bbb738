package entities

import "errors"

var (
	// ErrNoLocations is returned when folding a dependency without any declaration.
	ErrNoLocations = errors.New("dependency has no locations")

	// ErrAllSourcesFailed means every metadata source applicable to a dependency errored.
	ErrAllSourcesFailed = errors.New("all metadata sources failed")

	// ErrUnsupportedLocationKind means an edit was requested for a declaration kind
	// no manifest repository knows how to rewrite.
	ErrUnsupportedLocationKind = errors.New("unsupported declaration kind")
)

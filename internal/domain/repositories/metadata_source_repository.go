package repositories

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// MetadataSourceRepository is one package registry feed.
type MetadataSourceRepository interface {
	// Name identifies the source in logs and candidate provenance.
	Name() string

	// Ecosystem returns the ecosystem this source serves (e.g. "nuget").
	Ecosystem() string

	// Query returns the published versions of name. An unknown package yields
	// an empty slice and no error.
	Query(ctx context.Context, name string, includePrerelease bool) ([]entities.PackageVersion, error)
}

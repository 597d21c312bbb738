package repositories

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// ManifestRepository reads and rewrites one kind of manifest file.
type ManifestRepository interface {
	// Kind returns the declaration kind this repository handles.
	Kind() entities.DeclarationKind

	// Patterns returns the file name globs this repository understands (e.g. "*.csproj").
	Patterns() []string

	// Scan lists every package declared in the file at path. Entries whose
	// version does not parse are left out.
	Scan(ctx context.Context, path string) ([]entities.DeclaredPackage, error)

	// Update rewrites the version of every declaration of name in the file at
	// path, leaving every other byte untouched. It reports how many
	// declarations were changed.
	Update(ctx context.Context, path, name string, version entities.Version) (int, error)
}

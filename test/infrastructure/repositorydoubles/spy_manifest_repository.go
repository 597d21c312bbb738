//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// SpyManifestRepository implements repositories.ManifestRepository as a configurable spy.
type SpyManifestRepository struct {
	mu sync.Mutex

	// --- identity ---
	ManifestKind     entities.DeclarationKind
	ManifestPatterns []string

	// --- Scan ---
	Declared map[string][]entities.DeclaredPackage // path -> packages
	ScanErrs map[string]error                      // path -> error
	// spy: paths scanned
	ScannedPaths []string

	// --- Update ---
	UpdateErr   error
	UpdateCount int
	UpdateCalls []UpdateCall
}

// UpdateCall records a single invocation of Update.
type UpdateCall struct {
	Path    string
	Name    string
	Version string
}

var _ repositories.ManifestRepository = (*SpyManifestRepository)(nil)

func (m *SpyManifestRepository) Kind() entities.DeclarationKind { return m.ManifestKind }

func (m *SpyManifestRepository) Patterns() []string { return m.ManifestPatterns }

func (m *SpyManifestRepository) Scan(_ context.Context, path string) ([]entities.DeclaredPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ScannedPaths = append(m.ScannedPaths, path)
	if err, ok := m.ScanErrs[path]; ok {
		return nil, err
	}
	return m.Declared[path], nil
}

func (m *SpyManifestRepository) Update(
	_ context.Context,
	path, name string,
	version entities.Version,
) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{Path: path, Name: name, Version: version.String()})
	if m.UpdateErr != nil {
		return 0, m.UpdateErr
	}
	if m.UpdateCount == 0 {
		return 1, nil
	}
	return m.UpdateCount, nil
}

//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// StubIgnoreConditionRepository returns a fixed set of conditions.
type StubIgnoreConditionRepository struct {
	Conditions []entities.IgnoreCondition
	LoadErr    error
	// spy
	LoadedRoot       string
	LoadedRepository string
}

var _ repositories.IgnoreConditionRepository = (*StubIgnoreConditionRepository)(nil)

func (s *StubIgnoreConditionRepository) Load(
	_ context.Context,
	root, repository string,
) (entities.IgnoreIndex, error) {
	s.LoadedRoot = root
	s.LoadedRepository = repository
	if s.LoadErr != nil {
		return entities.IgnoreIndex{}, s.LoadErr
	}
	return entities.NewIgnoreIndex(s.Conditions), nil
}

package repositories

import (
	"context"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

// IgnoreConditionRepository loads the operator-defined suppression rules for a
// repository from the condition store rooted at root.
type IgnoreConditionRepository interface {
	Load(ctx context.Context, root, repository string) (entities.IgnoreIndex, error)
}

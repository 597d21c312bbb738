package ignorestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// FileIgnoreConditionRepository reads conditions laid out as
// {root}/{repository}/{dependency}/{condition}. Only file names matter.
type FileIgnoreConditionRepository struct{}

// NewIgnoreConditionRepository creates the filesystem ignore-condition store.
func NewIgnoreConditionRepository() repositories.IgnoreConditionRepository {
	return &FileIgnoreConditionRepository{}
}

func (r *FileIgnoreConditionRepository) Load(
	ctx context.Context,
	root, repository string,
) (entities.IgnoreIndex, error) {
	repoDir, ok, err := findDir(root, repository)
	if err != nil {
		return entities.IgnoreIndex{}, err
	}
	if !ok {
		logger.Debugf("[ignore] No ignore conditions for %s under %s", repository, root)
		return entities.NewIgnoreIndex(nil), nil
	}

	depDirs, err := os.ReadDir(repoDir)
	if err != nil {
		return entities.IgnoreIndex{}, fmt.Errorf("failed to list %s: %w", repoDir, err)
	}

	var conditions []entities.IgnoreCondition
	for _, depDir := range depDirs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entities.IgnoreIndex{}, ctxErr
		}
		if !depDir.IsDir() {
			continue
		}

		files, readErr := os.ReadDir(filepath.Join(repoDir, depDir.Name()))
		if readErr != nil {
			return entities.IgnoreIndex{}, fmt.Errorf("failed to list %s: %w", depDir.Name(), readErr)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			cond := entities.ParseIgnoreCondition(depDir.Name(), f.Name())
			if cond.Kind == entities.IgnoreUnsupported {
				logger.Warnf("[ignore] %s/%s is not a recognized condition and matches nothing",
					depDir.Name(), f.Name())
			}
			conditions = append(conditions, cond)
		}
	}

	return entities.NewIgnoreIndex(conditions), nil
}

// findDir returns the child of root whose name equals name case-insensitively.
func findDir(root, name string) (string, bool, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to list %s: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), name) {
			return filepath.Join(root, entry.Name()), true, nil
		}
	}
	return "", false, nil
}

//go:build unit

package ignorestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/ignorestore"
)

func marker(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("contents are ignored"), 0o600))
}

func TestFileIgnoreConditionRepositoryLoad(t *testing.T) {
	t.Parallel()

	t.Run("should read conditions from file names only", func(t *testing.T) {
		t.Parallel()
		// given
		root := t.TempDir()
		marker(t, root, "App", "Newtonsoft.Json", "13.x")
		marker(t, root, "App", "Newtonsoft.Json", "12.0.x")
		marker(t, root, "App", "Serilog", "all")
		marker(t, root, "Other", "Serilog", "1.x")

		// when
		index, err := ignorestore.NewIgnoreConditionRepository().Load(context.Background(), root, "app")

		// then
		require.NoError(t, err)
		assert.Equal(t, 3, index.Len())
		assert.True(t, index.Suppresses("newtonsoft.json", entities.MustParseVersion("13.0.3")))
		assert.True(t, index.Suppresses("Newtonsoft.Json", entities.MustParseVersion("12.0.9")))
		assert.False(t, index.Suppresses("Newtonsoft.Json", entities.MustParseVersion("12.1.0")))
		assert.True(t, index.Suppresses("Serilog", entities.MustParseVersion("9.0.0")))
	})

	t.Run("should keep unsupported names as conditions that match nothing", func(t *testing.T) {
		t.Parallel()
		// given
		root := t.TempDir()
		marker(t, root, "app", "A", "latest")

		// when
		index, err := ignorestore.NewIgnoreConditionRepository().Load(context.Background(), root, "app")

		// then
		require.NoError(t, err)
		require.Equal(t, 1, index.Len())
		assert.Equal(t, entities.IgnoreUnsupported, index.For("A")[0].Kind)
		assert.False(t, index.Suppresses("A", entities.MustParseVersion("1.0.0")))
	})

	t.Run("should return an empty index when the store or repository is missing", func(t *testing.T) {
		t.Parallel()
		// given
		root := t.TempDir()
		missingRoot := filepath.Join(root, "nope")

		// when
		noRepo, err1 := ignorestore.NewIgnoreConditionRepository().Load(context.Background(), root, "app")
		noRoot, err2 := ignorestore.NewIgnoreConditionRepository().Load(context.Background(), missingRoot, "app")

		// then
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, 0, noRepo.Len())
		assert.Equal(t, 0, noRoot.Len())
	})
}

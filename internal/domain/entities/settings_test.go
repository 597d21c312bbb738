//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewSettings(t *testing.T) {
	t.Parallel()

	t.Run("should apply defaults to a minimal file", func(t *testing.T) {
		t.Parallel()
		// given
		path := writeConfig(t, "provider:\n  type: github\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, ".", settings.Repository.Path)
		assert.Equal(t, entities.DefaultRemoteName, settings.Repository.Remote)
		assert.Equal(t, entities.DefaultBranchPrefix, settings.BranchPrefix)
		assert.Equal(t, entities.DefaultConcurrency, settings.Concurrency)
		assert.Equal(t, entities.DefaultIgnoreConditionsPath, settings.IgnoreConditions)
		assert.Equal(t, entities.DefaultCommitName, settings.Commit.Name)
		assert.Empty(t, settings.Sources)
	})

	t.Run("should fill in source URLs and names from the type", func(t *testing.T) {
		t.Parallel()
		// given
		path := writeConfig(t, `
sources:
  - type: nuget
  - name: internal
    type: terraform
    url: https://tf.example.com
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		require.Len(t, settings.Sources, 2)
		assert.Equal(t, entities.DefaultNuGetURL, settings.Sources[0].URL)
		assert.Equal(t, entities.DefaultNuGetURL, settings.Sources[0].Name)
		assert.Equal(t, "internal", settings.Sources[1].Name)
		assert.Equal(t, "https://tf.example.com", settings.Sources[1].URL)
	})

	t.Run("should read the token from a file", func(t *testing.T) {
		t.Parallel()
		// given
		tokenFile := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("from-file\n"), 0o600))
		path := writeConfig(t, "provider:\n  token: "+tokenFile+"\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-file", settings.Provider.Token)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		t.Parallel()
		// given
		tests := map[string]string{
			"branch prefix": "branch_prefix: \"bad prefix\"\n",
			"max groups":    "max_groups: -1\n",
			"source type":   "sources:\n  - url: https://x\n",
			"group name":    "groups:\n  - prefixes: [\"A.\"]\n",
			"group members": "groups:\n  - name: Empty\n",
		}

		for name, content := range tests {
			// when
			_, err := entities.NewSettings(writeConfig(t, content))

			// then
			require.Error(t, err, name)
		}
	})

	t.Run("should return error for a missing file", func(t *testing.T) {
		t.Parallel()
		// given
		path := filepath.Join(t.TempDir(), "missing.yaml")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
	})

	t.Run("should extend grouping and exclusions from the file", func(t *testing.T) {
		t.Parallel()
		// given
		path := writeConfig(t, `
groups:
  - name: Azure
    prefixes: ["Azure."]
exclusions:
  Legacy.Lib: frozen
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Azure", settings.Grouping().GroupOf("Azure.Core").GroupName)
		assert.Equal(t, "AWSSDK", settings.Grouping().GroupOf("AWSSDK.S3").GroupName)
		reason, ok := settings.ExclusionPolicy().Excludes("Legacy.Lib")
		assert.True(t, ok)
		assert.Equal(t, "frozen", reason)
	})
}

//nolint:paralleltest // t.Setenv cannot run in parallel tests
func TestNewSettingsTokenFromEnv(t *testing.T) {
	t.Run("should resolve the token from an environment variable", func(t *testing.T) {
		// given
		t.Setenv("PBOT_TEST_TOKEN", "secret")
		path := writeConfig(t, "provider:\n  type: gitlab\n  token: ${PBOT_TEST_TOKEN}\n")

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "secret", settings.Provider.Token)
	})
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	t.Run("should match the defaults applied to a file", func(t *testing.T) {
		t.Parallel()
		// given / when
		settings := entities.DefaultSettings()

		// then
		assert.Equal(t, entities.DefaultBranchPrefix, settings.BranchPrefix)
		assert.Equal(t, 0, settings.MaxGroups)
		assert.False(t, settings.DryRun)
	})
}

//go:build unit

package terraform_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/terraform"
)

const configuration = `terraform {
  required_version = ">= 1.5"
}

module "consul" {
  source  = "hashicorp/consul/aws"
  version = "0.1.0" # pinned
}

module "vpc" {
  source = "terraform-aws-modules/vpc/aws//modules/vpc-endpoints"
  version = "5.1.2"
}

module "private" {
  source  = "app.terraform.io/acme/network/azurerm"
  version = "1.0.0"
}

module "constrained" {
  source  = "hashicorp/vault/aws"
  version = "~> 0.10"
}

module "local" {
  source = "./modules/local"
}

module "git" {
  source  = "github.com/hashicorp/example/aws"
  version = "1.0.0"
}
`

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.tf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTerraformManifestRepositoryScan(t *testing.T) {
	t.Parallel()

	t.Run("should list registry modules pinned to an exact version", func(t *testing.T) {
		t.Parallel()
		// given
		path := write(t, configuration)

		// when
		found, err := terraform.NewManifestRepository().Scan(context.Background(), path)

		// then
		require.NoError(t, err)
		got := make([]string, 0, len(found))
		for _, f := range found {
			got = append(got, f.Name+"@"+f.Location.Version.String())
			assert.Equal(t, entities.KindTerraformModule, f.Location.Kind)
		}
		assert.Equal(t, []string{
			"hashicorp/consul/aws@0.1.0",
			"terraform-aws-modules/vpc/aws@5.1.2",
			"app.terraform.io/acme/network/azurerm@1.0.0",
		}, got)
	})

	t.Run("should return error for invalid HCL", func(t *testing.T) {
		t.Parallel()
		// given
		path := write(t, `module "broken" {`)

		// when
		_, err := terraform.NewManifestRepository().Scan(context.Background(), path)

		// then
		require.Error(t, err)
	})
}

func TestTerraformManifestRepositoryUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite only the version literal and keep comments", func(t *testing.T) {
		t.Parallel()
		// given
		path := write(t, configuration)

		// when
		changed, err := terraform.NewManifestRepository().Update(
			context.Background(), path, "HashiCorp/Consul/AWS", entities.MustParseVersion("0.2.0"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, changed)
		got, _ := os.ReadFile(path)
		want := strings.Replace(configuration, `version = "0.1.0" # pinned`, `version = "0.2.0" # pinned`, 1)
		assert.Equal(t, want, string(got))
	})

	t.Run("should match modules declared with a subdirectory", func(t *testing.T) {
		t.Parallel()
		// given
		path := write(t, configuration)

		// when
		changed, err := terraform.NewManifestRepository().Update(
			context.Background(), path, "terraform-aws-modules/vpc/aws", entities.MustParseVersion("5.2.0"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, changed)
		got, _ := os.ReadFile(path)
		assert.Contains(t, string(got), "vpc-endpoints\"\n  version = \"5.2.0\"")
	})

	t.Run("should report zero changes for an unknown module", func(t *testing.T) {
		t.Parallel()
		// given
		path := write(t, configuration)

		// when
		changed, err := terraform.NewManifestRepository().Update(
			context.Background(), path, "acme/none/aws", entities.MustParseVersion("1.0.0"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, changed)
		got, _ := os.ReadFile(path)
		assert.Equal(t, configuration, string(got))
	})
}

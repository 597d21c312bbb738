package repositories

import (
	"go.uber.org/dig"

	adoRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/azuredevops"
	ghRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/github"
	gitRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/gitrepo"
	glRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/gitlab"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
	ignoreRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/ignorestore"
	msbuildRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/msbuild"
	nugetRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/nuget"
	tfRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/terraform"
	tfRegistryRepo "github.com/rios0rios0/pbot/internal/infrastructure/repositories/terraformregistry"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() *ChangeRequestHostRegistry {
		reg := NewChangeRequestHostRegistry()
		reg.Register("github", ghRepo.NewChangeRequestHostRepository)
		reg.Register("gitlab", glRepo.NewChangeRequestHostRepository)
		reg.Register("azuredevops", adoRepo.NewChangeRequestHostRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() *ManifestRegistry {
		reg := NewManifestRegistry()
		reg.Register(msbuildRepo.NewManifestRepository())
		reg.Register(tfRepo.NewManifestRepository())
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() *MetadataSourceRegistry {
		reg := NewMetadataSourceRegistry(httpclient.New())
		reg.Register("nuget", nugetRepo.NewSourceRepository)
		reg.Register("terraform", tfRegistryRepo.NewSourceRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(ignoreRepo.NewIgnoreConditionRepository); err != nil {
		return err
	}

	if err := container.Provide(func() gitRepo.Factory {
		return gitRepo.NewVersionControlRepository
	}); err != nil {
		return err
	}

	return nil
}

package terraformregistry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

const addressParts = 3

type versionsResponse struct {
	Modules []struct {
		Source   string `json:"source"`
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	} `json:"modules"`
}

// TerraformRegistrySourceRepository lists module versions from a Terraform module registry.
type TerraformRegistrySourceRepository struct {
	name    string
	baseURL string
	host    string
	client  *httpclient.Client
}

// NewSourceRepository creates a source for the registry at baseURL (e.g. https://registry.terraform.io).
func NewSourceRepository(name, baseURL string, client *httpclient.Client) repositories.MetadataSourceRepository {
	host := ""
	if parsed, err := url.Parse(baseURL); err == nil {
		host = parsed.Host
	}
	return &TerraformRegistrySourceRepository{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		host:    host,
		client:  client,
	}
}

func (s *TerraformRegistrySourceRepository) Name() string      { return s.name }
func (s *TerraformRegistrySourceRepository) Ecosystem() string { return entities.EcosystemTerraform }

func (s *TerraformRegistrySourceRepository) Query(
	ctx context.Context,
	name string,
	includePrerelease bool,
) ([]entities.PackageVersion, error) {
	parts := strings.Split(name, "/")
	if len(parts) == addressParts+1 {
		if !strings.EqualFold(parts[0], s.host) {
			return []entities.PackageVersion{}, nil
		}
		parts = parts[1:]
	}
	if len(parts) != addressParts {
		return []entities.PackageVersion{}, nil
	}

	endpoint := fmt.Sprintf("%s/v1/modules/%s/%s/%s/versions",
		s.baseURL, url.PathEscape(parts[0]), url.PathEscape(parts[1]), url.PathEscape(parts[2]))

	var resp versionsResponse
	if err := s.client.GetJSON(ctx, endpoint, &resp); err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return []entities.PackageVersion{}, nil
		}
		return nil, err
	}

	projectURL := fmt.Sprintf("%s/modules/%s/%s/%s", s.baseURL, parts[0], parts[1], parts[2])

	var versions []entities.PackageVersion
	for _, module := range resp.Modules {
		if module.Source != "" && strings.HasPrefix(module.Source, "https://github.com/") {
			projectURL = module.Source
		}
		for _, v := range module.Versions {
			version, err := entities.ParseVersion(v.Version)
			if err != nil {
				logger.Debugf("[terraform-registry] %s: skipping %s %q: %v", s.name, name, v.Version, err)
				continue
			}
			if version.IsPrerelease() && !includePrerelease {
				continue
			}
			versions = append(versions, entities.PackageVersion{Version: version})
		}
	}
	for i := range versions {
		versions[i].ProjectURL = projectURL
	}

	return versions, nil
}

package nuget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
	"github.com/rios0rios0/pbot/internal/infrastructure/repositories/httpclient"
)

// registration resource types, most preferred first
var registrationTypes = []string{
	"RegistrationsBaseUrl/3.6.0",
	"RegistrationsBaseUrl/3.4.0",
	"RegistrationsBaseUrl",
}

var errNoRegistrationResource = errors.New("service index has no RegistrationsBaseUrl resource")

type serviceIndex struct {
	Resources []struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	} `json:"resources"`
}

type registrationIndex struct {
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	CatalogEntry catalogEntry `json:"catalogEntry"`
}

type catalogEntry struct {
	ID         string `json:"id"`
	Version    string `json:"version"`
	ProjectURL string `json:"projectUrl"`
	Listed     *bool  `json:"listed"`
}

// NuGetSourceRepository queries a NuGet V3 feed through its registration resource.
type NuGetSourceRepository struct {
	name     string
	indexURL string
	client   *httpclient.Client

	mu           sync.Mutex
	registration string
}

// NewSourceRepository creates a source for the feed whose service index is at indexURL.
func NewSourceRepository(name, indexURL string, client *httpclient.Client) repositories.MetadataSourceRepository {
	return &NuGetSourceRepository{name: name, indexURL: indexURL, client: client}
}

func (s *NuGetSourceRepository) Name() string      { return s.name }
func (s *NuGetSourceRepository) Ecosystem() string { return entities.EcosystemNuGet }

func (s *NuGetSourceRepository) Query(
	ctx context.Context,
	name string,
	includePrerelease bool,
) ([]entities.PackageVersion, error) {
	base, err := s.registrationBase(ctx)
	if err != nil {
		return nil, err
	}

	var index registrationIndex
	indexURL := base + strings.ToLower(name) + "/index.json"
	if getErr := s.client.GetJSON(ctx, indexURL, &index); getErr != nil {
		if errors.Is(getErr, httpclient.ErrNotFound) {
			return []entities.PackageVersion{}, nil
		}
		return nil, getErr
	}

	var versions []entities.PackageVersion
	for _, page := range index.Items {
		leaves := page.Items
		if leaves == nil && page.ID != "" {
			var full registrationPage
			if getErr := s.client.GetJSON(ctx, page.ID, &full); getErr != nil {
				return nil, fmt.Errorf("failed to fetch registration page: %w", getErr)
			}
			leaves = full.Items
		}

		for _, leaf := range leaves {
			entry := leaf.CatalogEntry
			if entry.Listed != nil && !*entry.Listed {
				continue
			}
			version, parseErr := entities.ParseVersion(entry.Version)
			if parseErr != nil {
				logger.Debugf("[nuget] %s: skipping %s %q: %v", s.name, name, entry.Version, parseErr)
				continue
			}
			if version.IsPrerelease() && !includePrerelease {
				continue
			}
			versions = append(versions, entities.PackageVersion{Version: version, ProjectURL: entry.ProjectURL})
		}
	}

	return versions, nil
}

// registrationBase resolves the registration base URL once per source.
func (s *NuGetSourceRepository) registrationBase(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registration != "" {
		return s.registration, nil
	}

	var index serviceIndex
	if err := s.client.GetJSON(ctx, s.indexURL, &index); err != nil {
		return "", fmt.Errorf("failed to read service index %s: %w", s.indexURL, err)
	}

	for _, wanted := range registrationTypes {
		for _, res := range index.Resources {
			if res.Type == wanted {
				base := res.ID
				if !strings.HasSuffix(base, "/") {
					base += "/"
				}
				s.registration = base
				return base, nil
			}
		}
	}

	return "", fmt.Errorf("%s: %w", s.indexURL, errNoRegistrationResource)
}

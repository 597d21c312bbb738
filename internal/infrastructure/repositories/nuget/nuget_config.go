package nuget

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
)

const defaultSourceName = "nuget.org"

type nugetConfig struct {
	PackageSources struct {
		Clear *struct{} `xml:"clear"`
		Add   []keyValue `xml:"add"`
	} `xml:"packageSources"`
	DisabledPackageSources struct {
		Add []keyValue `xml:"add"`
	} `xml:"disabledPackageSources"`
}

type keyValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// PackageSources reads the V3 feeds enabled by nuget.config in root. Without a
// config file, or when the file does not clear them, nuget.org is included.
func PackageSources(root string) ([]entities.SourceConfig, error) {
	defaults := []entities.SourceConfig{{
		Name: defaultSourceName,
		Type: entities.SourceTypeNuGet,
		URL:  entities.DefaultNuGetURL,
	}}

	path, ok := findConfig(root)
	if !ok {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg nugetConfig
	if unmarshalErr := xml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, unmarshalErr)
	}

	disabled := make(map[string]bool)
	for _, d := range cfg.DisabledPackageSources.Add {
		if strings.EqualFold(d.Value, "true") {
			disabled[strings.ToLower(d.Key)] = true
		}
	}

	var sources []entities.SourceConfig
	if cfg.PackageSources.Clear == nil {
		sources = append(sources, defaults...)
	}

	for _, add := range cfg.PackageSources.Add {
		if disabled[strings.ToLower(add.Key)] {
			logger.Debugf("[nuget] Source %s is disabled", add.Key)
			continue
		}
		if !strings.HasPrefix(add.Value, "http") || !strings.HasSuffix(strings.ToLower(add.Value), "/index.json") {
			logger.Warnf("[nuget] Ignoring source %s (%s): only V3 HTTP feeds are supported", add.Key, add.Value)
			continue
		}
		sources = replaceOrAppend(sources, entities.SourceConfig{
			Name: add.Key,
			Type: entities.SourceTypeNuGet,
			URL:  add.Value,
		})
	}

	for i := 0; i < len(sources); i++ {
		if disabled[strings.ToLower(sources[i].Name)] {
			sources = append(sources[:i], sources[i+1:]...)
			i--
		}
	}

	logger.Infof("[nuget] Using %d package sources from %s", len(sources), path)
	return sources, nil
}

func findConfig(root string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), "nuget.config") {
			return filepath.Join(root, entry.Name()), true
		}
	}
	return "", false
}

func replaceOrAppend(sources []entities.SourceConfig, src entities.SourceConfig) []entities.SourceConfig {
	for i := range sources {
		if strings.EqualFold(sources[i].Name, src.Name) {
			sources[i] = src
			return sources
		}
	}
	return append(sources, src)
}

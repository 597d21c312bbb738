package terraform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

// registrySource matches [HOST/]NAMESPACE/NAME/PROVIDER with an optional //subdir.
var registrySource = regexp.MustCompile(
	`^((?:[0-9A-Za-z-]+\.)+[0-9A-Za-z-]+/)?([0-9A-Za-z][0-9A-Za-z_-]*)/([0-9A-Za-z][0-9A-Za-z_-]*)/([0-9a-z]{1,64})(//.*)?$`,
)

// moduleVersion is a module block whose version is an exact literal.
type moduleVersion struct {
	address string
	version string
	start   int
	end     int
}

// TerraformManifestRepository reads and edits registry module versions in .tf files.
type TerraformManifestRepository struct{}

// NewManifestRepository creates the Terraform manifest repository.
func NewManifestRepository() repositories.ManifestRepository {
	return &TerraformManifestRepository{}
}

func (m *TerraformManifestRepository) Kind() entities.DeclarationKind {
	return entities.KindTerraformModule
}

func (m *TerraformManifestRepository) Patterns() []string { return []string{"*.tf"} }

func (m *TerraformManifestRepository) Scan(_ context.Context, path string) ([]entities.DeclaredPackage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	modules, err := findModules(content, path)
	if err != nil {
		return nil, err
	}

	var found []entities.DeclaredPackage
	for _, mod := range modules {
		version, parseErr := entities.ParseVersion(mod.version)
		if parseErr != nil {
			logger.Debugf("[terraform] %s: skipping %s: %v", path, mod.address, parseErr)
			continue
		}
		found = append(found, entities.DeclaredPackage{
			Name: mod.address,
			Location: entities.DependencyLocation{
				FilePath: path,
				Kind:     entities.KindTerraformModule,
				Version:  version,
			},
		})
	}

	return found, nil
}

func (m *TerraformManifestRepository) Update(
	_ context.Context,
	path, name string,
	version entities.Version,
) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	modules, err := findModules(content, path)
	if err != nil {
		return 0, err
	}

	var out bytes.Buffer
	last := 0
	changed := 0
	for _, mod := range modules {
		if !strings.EqualFold(mod.address, name) || mod.version == version.String() {
			continue
		}
		out.Write(content[last:mod.start])
		out.WriteString(version.String())
		last = mod.end
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	out.Write(content[last:])

	if writeErr := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); writeErr != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, writeErr)
	}
	return changed, nil
}

// findModules returns registry module blocks in source order, each with the byte
// range of its version literal.
func findModules(content []byte, path string) ([]moduleVersion, error) {
	file, diags := hclsyntax.ParseConfig(content, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, nil
	}

	var modules []moduleVersion
	for _, block := range body.Blocks {
		if block.Type != "module" {
			continue
		}

		source, ok := literalString(block.Body.Attributes["source"])
		if !ok {
			continue
		}
		address, ok := registryAddress(source)
		if !ok {
			continue
		}

		versionAttr := block.Body.Attributes["version"]
		version, ok := literalString(versionAttr)
		if !ok {
			continue
		}

		rng := versionAttr.Expr.Range()
		raw := content[rng.Start.Byte:rng.End.Byte]
		idx := bytes.Index(raw, []byte(version))
		if idx < 0 {
			continue
		}

		modules = append(modules, moduleVersion{
			address: address,
			version: version,
			start:   rng.Start.Byte + idx,
			end:     rng.Start.Byte + idx + len(version),
		})
	}

	return modules, nil
}

func literalString(attr *hclsyntax.Attribute) (string, bool) {
	if attr == nil {
		return "", false
	}
	value, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || !value.IsKnown() || value.IsNull() || value.Type() != cty.String {
		return "", false
	}
	return value.AsString(), true
}

// registryAddress strips the subdirectory from a registry source address.
// Local paths and other source kinds are rejected.
func registryAddress(source string) (string, bool) {
	match := registrySource.FindStringSubmatch(source)
	if match == nil {
		return "", false
	}
	host := strings.TrimSuffix(match[1], "/")
	if strings.EqualFold(host, "github.com") || strings.EqualFold(host, "bitbucket.org") {
		return "", false
	}
	address := match[2] + "/" + match[3] + "/" + match[4]
	if host != "" {
		address = host + "/" + address
	}
	return address, true
}

package msbuild

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pbot/internal/domain/entities"
	"github.com/rios0rios0/pbot/internal/domain/repositories"
)

const (
	nameAttribute    = "Include"
	versionAttribute = "Version"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// elements matched under //Project/ItemGroup
	packageElements = map[string]bool{
		"PackageReference":       true,
		"GlobalPackageReference": true,
		"PackageVersion":         true,
	}

	errMalformedTag = errors.New("malformed start tag")
)

// reference is one matched package element and where its Version value sits in the file.
type reference struct {
	name       string
	version    string
	valueStart int
	valueEnd   int
}

// MSBuildManifestRepository reads and edits package references in MSBuild files.
type MSBuildManifestRepository struct{}

// NewManifestRepository creates the MSBuild manifest repository.
func NewManifestRepository() repositories.ManifestRepository {
	return &MSBuildManifestRepository{}
}

func (m *MSBuildManifestRepository) Kind() entities.DeclarationKind { return entities.KindProjectFile }

func (m *MSBuildManifestRepository) Patterns() []string {
	return []string{"*.csproj", "*.props", "*.targets"}
}

func (m *MSBuildManifestRepository) Scan(_ context.Context, path string) ([]entities.DeclaredPackage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	refs, err := locate(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var found []entities.DeclaredPackage
	for _, ref := range refs {
		version, parseErr := entities.ParseVersion(ref.version)
		if parseErr != nil {
			logger.Debugf("[msbuild] %s: skipping %s: %v", path, ref.name, parseErr)
			continue
		}
		found = append(found, entities.DeclaredPackage{
			Name: ref.name,
			Location: entities.DependencyLocation{
				FilePath: path,
				Kind:     entities.KindProjectFile,
				Version:  version,
			},
		})
	}

	return found, nil
}

func (m *MSBuildManifestRepository) Update(
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

	refs, err := locate(content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	updated, changed := splice(content, refs, name, version.String())
	if changed == 0 {
		return 0, nil
	}

	if writeErr := os.WriteFile(path, updated, info.Mode().Perm()); writeErr != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, writeErr)
	}
	return changed, nil
}

// splice replaces the Version value of every reference to name; all other bytes are kept.
func splice(content []byte, refs []reference, name, version string) ([]byte, int) {
	var out bytes.Buffer
	out.Grow(len(content))

	last := 0
	changed := 0
	for _, ref := range refs {
		if !strings.EqualFold(ref.name, name) || ref.version == version {
			continue
		}
		out.Write(content[last:ref.valueStart])
		out.WriteString(version)
		last = ref.valueEnd
		changed++
	}
	out.Write(content[last:])

	return out.Bytes(), changed
}

// locate finds every package element with both Include and Version attributes,
// in document order.
func locate(content []byte) ([]reference, error) {
	offset := 0
	if bytes.HasPrefix(content, utf8BOM) {
		offset = len(utf8BOM)
	}
	body := content[offset:]

	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var stack []string
	var refs []reference

	for {
		start := int(decoder.InputOffset())
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if isPackageElement(stack, t.Name.Local) {
				ref, ok, refErr := referenceFrom(t, body, start, int(decoder.InputOffset()))
				if refErr != nil {
					return nil, refErr
				}
				if ok {
					ref.valueStart += offset
					ref.valueEnd += offset
					refs = append(refs, ref)
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return refs, nil
}

func isPackageElement(stack []string, local string) bool {
	n := len(stack)
	return n >= 2 && stack[n-2] == "Project" && stack[n-1] == "ItemGroup" && packageElements[local]
}

func referenceFrom(element xml.StartElement, body []byte, start, end int) (reference, bool, error) {
	var ref reference
	var hasName, hasVersion bool
	for _, attr := range element.Attr {
		switch attr.Name.Local {
		case nameAttribute:
			ref.name = attr.Value
			hasName = true
		case versionAttribute:
			ref.version = attr.Value
			hasVersion = true
		}
	}
	if !hasName || !hasVersion {
		return ref, false, nil
	}

	valueStart, valueEnd, err := attributeValueSpan(body[start:end], versionAttribute)
	if err != nil {
		return ref, false, err
	}
	ref.valueStart = start + valueStart
	ref.valueEnd = start + valueEnd
	return ref, true, nil
}

// attributeValueSpan returns the byte range of the named attribute's value inside
// a raw start tag, excluding the quotes.
func attributeValueSpan(tag []byte, attribute string) (int, int, error) {
	i := 1 // skip '<'
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}

	for i < len(tag) {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] == '>' || tag[i] == '/' {
			break
		}

		nameStart := i
		for i < len(tag) && tag[i] != '=' && !isSpace(tag[i]) {
			i++
		}
		attrName := string(tag[nameStart:i])
		if colon := strings.IndexByte(attrName, ':'); colon >= 0 {
			attrName = attrName[colon+1:]
		}

		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			return 0, 0, errMalformedTag
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			return 0, 0, errMalformedTag
		}

		quote := tag[i]
		i++
		valueStart := i
		for i < len(tag) && tag[i] != quote {
			i++
		}
		if i >= len(tag) {
			return 0, 0, errMalformedTag
		}
		if attrName == attribute {
			return valueStart, i, nil
		}
		i++
	}

	return 0, 0, fmt.Errorf("attribute %s: %w", attribute, errMalformedTag)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Package metadata models component metadata records produced by a
// documentation extractor and loads them from JSON or YAML documents.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a metadata document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for files whose extension is not a known
// metadata format.
var ErrUnknownFormat = errors.New("unknown metadata format")

// FormatFromPath derives the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Set is a collection of component metadata records.
type Set struct {
	Components []ComponentMetadata `json:"components" yaml:"components"`

	// Origin maps a component display name to the file it was loaded from.
	// Empty for sets decoded from raw bytes.
	Origin map[string]string `json:"-" yaml:"-"`
}

// Index provides O(1) lookups into a Set.
// Built after validation passes.
type Index struct {
	// ComponentByName maps display name -> *ComponentMetadata.
	ComponentByName map[string]*ComponentMetadata

	// ComponentByFoldedName maps lower-cased display name -> *ComponentMetadata.
	ComponentByFoldedName map[string]*ComponentMetadata
}

// Validate checks the set for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (s *Set) Validate() []error {
	var errs []error
	names := make(map[string]bool, len(s.Components))

	for i, comp := range s.Components {
		if comp.DisplayName == "" {
			errs = append(errs, fmt.Errorf("components[%d]: displayName is required", i))
			continue
		}
		if names[comp.DisplayName] {
			errs = append(errs, fmt.Errorf("component %q: duplicate component name", comp.DisplayName))
			continue
		}
		names[comp.DisplayName] = true

		// Repeated prop names are allowed; story args keep the last one.
		for j, prop := range comp.Props {
			if prop.Name == "" {
				errs = append(errs, fmt.Errorf("component %q props[%d]: name is required", comp.DisplayName, j))
			}
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (s *Set) BuildIndex() *Index {
	idx := &Index{
		ComponentByName:       make(map[string]*ComponentMetadata, len(s.Components)),
		ComponentByFoldedName: make(map[string]*ComponentMetadata, len(s.Components)),
	}
	for i := range s.Components {
		comp := &s.Components[i]
		idx.ComponentByName[comp.DisplayName] = comp
		folded := strings.ToLower(comp.DisplayName)
		if _, exists := idx.ComponentByFoldedName[folded]; !exists {
			idx.ComponentByFoldedName[folded] = comp
		}
	}
	return idx
}

// Decode parses a metadata document without validating it.
//
// A document is a single component, a list of components, or an object with
// a "components" list.
func Decode(data []byte, format Format) (*Set, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeJSON(data []byte) (*Set, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to parse metadata JSON: empty document")
	}

	if trimmed[0] == '[' {
		var comps []ComponentMetadata
		if err := json.Unmarshal(trimmed, &comps); err != nil {
			return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
		}
		return &Set{Components: comps}, nil
	}

	var wrapper struct {
		Components *[]ComponentMetadata `json:"components"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	if wrapper.Components != nil {
		return &Set{Components: *wrapper.Components}, nil
	}

	var comp ComponentMetadata
	if err := json.Unmarshal(trimmed, &comp); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}
	return &Set{Components: []ComponentMetadata{comp}}, nil
}

func decodeYAML(data []byte) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("failed to parse metadata YAML: empty document")
	}
	root := doc.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var comps []ComponentMetadata
		if err := root.Decode(&comps); err != nil {
			return nil, fmt.Errorf("failed to parse metadata YAML: %w", err)
		}
		return &Set{Components: comps}, nil
	case yaml.MappingNode:
		if hasKey(root, "components") {
			var set Set
			if err := root.Decode(&set); err != nil {
				return nil, fmt.Errorf("failed to parse metadata YAML: %w", err)
			}
			return &set, nil
		}
		var comp ComponentMetadata
		if err := root.Decode(&comp); err != nil {
			return nil, fmt.Errorf("failed to parse metadata YAML: %w", err)
		}
		return &Set{Components: []ComponentMetadata{comp}}, nil
	default:
		return nil, fmt.Errorf("failed to parse metadata YAML: unexpected document at line %d", root.Line)
	}
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

// LoadFromBytes decodes a metadata document, validates it, and builds the index.
func LoadFromBytes(data []byte, format Format) (*Set, *Index, error) {
	set, err := Decode(data, format)
	if err != nil {
		return nil, nil, err
	}
	if errs := set.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("metadata validation failed: %w", errors.Join(errs...))
	}
	return set, set.BuildIndex(), nil
}

// LoadFromFile reads a metadata document from disk, validates it, and builds
// the index. The format is derived from the file extension.
func LoadFromFile(path string) (*Set, *Index, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return LoadFromBytes(data, format)
}

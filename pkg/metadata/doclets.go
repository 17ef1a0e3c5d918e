package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known doclet tags.
const (
	TagPrivate      = "private"
	TagIgnore       = "ignore"
	TagDeprecated   = "deprecated"
	TagControllable = "controllable"
)

// Doclet is a single annotation tag attached to a property.
type Doclet struct {
	Tag   string `json:"tag" yaml:"tag"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Doclets is the ordered set of annotation tags on a property.
//
// Extractors emit either a list of {tag, value} records or an object keyed
// by tag name. Both decode into the same list; object keys are sorted so the
// result is deterministic. In the object form a false or null value means
// the tag is not set.
type Doclets []Doclet

// Has reports whether a doclet with the given tag is present.
func (d Doclets) Has(tag string) bool {
	_, ok := d.Value(tag)
	return ok
}

// Value returns the value of the first doclet with the given tag.
func (d Doclets) Value(tag string) (string, bool) {
	for _, doclet := range d {
		if doclet.Tag == tag {
			return doclet.Value, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts both the list and the object form.
func (d *Doclets) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []Doclet
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("doclets: %w", err)
		}
		*d = list
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("doclets: %w", err)
		}
		out := make(Doclets, 0, len(obj))
		for tag, raw := range obj {
			if unsetDocletValue(raw) {
				continue
			}
			out = append(out, Doclet{Tag: tag, Value: rawDocletValue(raw)})
		}
		sortDoclets(out)
		*d = out
		return nil
	default:
		return fmt.Errorf("doclets: expected list or object, got %s", trimmed)
	}
}

// UnmarshalYAML accepts both the sequence and the mapping form.
func (d *Doclets) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Doclet
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("doclets: %w", err)
		}
		*d = list
		return nil
	case yaml.MappingNode:
		out := make(Doclets, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if val.Kind == yaml.ScalarNode && (val.Tag == "!!null" || (val.Tag == "!!bool" && !isTrue(val))) {
				continue
			}
			value := ""
			if val.Kind == yaml.ScalarNode {
				value = val.Value
			}
			out = append(out, Doclet{Tag: key.Value, Value: value})
		}
		sortDoclets(out)
		*d = out
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*d = nil
			return nil
		}
	}
	return fmt.Errorf("doclets: expected sequence or mapping at line %d", node.Line)
}

func unsetDocletValue(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "false", "null":
		return true
	}
	return false
}

func isTrue(node *yaml.Node) bool {
	var b bool
	return node.Decode(&b) == nil && b
}

// rawDocletValue flattens a JSON doclet value into text. String values are
// unquoted, anything else keeps its JSON text.
func rawDocletValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func sortDoclets(d Doclets) {
	sort.SliceStable(d, func(i, j int) bool {
		return d[i].Tag < d[j].Tag
	})
}

package metadata

// ComponentMetadata describes one documented UI component as produced by the
// upstream documentation extractor.
type ComponentMetadata struct {
	DisplayName string               `json:"displayName" yaml:"displayName"`
	Description *Description         `json:"description,omitempty" yaml:"description,omitempty"`
	Props       []PropertyDescriptor `json:"props" yaml:"props"`
	Composes    []string             `json:"composes,omitempty" yaml:"composes,omitempty"`
	// ExportedBy names the parent component that exposes this one as a
	// static member (e.g. Modal for Modal.Header).
	ExportedBy *string `json:"exportedBy,omitempty" yaml:"exportedBy,omitempty"`
}

// PropertyDescriptor is the metadata for a single component property.
type PropertyDescriptor struct {
	Name         string        `json:"name" yaml:"name"`
	Type         *PropType     `json:"type,omitempty" yaml:"type,omitempty"`
	Required     bool          `json:"required" yaml:"required"`
	Description  *Description  `json:"description,omitempty" yaml:"description,omitempty"`
	Doclets      Doclets       `json:"doclets,omitempty" yaml:"doclets,omitempty"`
	DefaultValue *DefaultValue `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// PropType is the serialized type of a property. Name is either a type tag
// ("func", "bool") or a raw union expression ("'a' | 'b'").
//
// Value is kept as decoded: docgen emits a list of members for enum and
// union types, an object for shape, and a string for instanceOf.
type PropType struct {
	Name  *string `json:"name,omitempty" yaml:"name,omitempty"`
	Value any     `json:"value,omitempty" yaml:"value,omitempty"`
	Raw   *string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// TypeName returns the type name and whether it is present.
func (t *PropType) TypeName() (string, bool) {
	if t == nil || t.Name == nil {
		return "", false
	}
	return *t.Name, true
}

// Description holds plain text and, optionally, the pre-rendered HTML of a
// Markdown description.
type Description struct {
	Text                string    `json:"text" yaml:"text"`
	ChildMarkdownRemark *Markdown `json:"childMarkdownRemark,omitempty" yaml:"childMarkdownRemark,omitempty"`
}

// HTML returns the pre-rendered HTML, if any.
func (d *Description) HTML() (string, bool) {
	if d == nil || d.ChildMarkdownRemark == nil || d.ChildMarkdownRemark.HTML == "" {
		return "", false
	}
	return d.ChildMarkdownRemark.HTML, true
}

// Markdown is the rendered form of a Markdown description.
type Markdown struct {
	HTML string `json:"html" yaml:"html"`
}

// DefaultValue is a property's default as written in source.
type DefaultValue struct {
	Value    string `json:"value" yaml:"value"`
	Computed bool   `json:"computed,omitempty" yaml:"computed,omitempty"`
}

// StringPtr is a convenience for building optional string fields.
func StringPtr(s string) *string {
	return &s
}

// Package storyargs derives story arguments (Storybook argTypes) from
// component prop metadata.
package storyargs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/propdoc/pkg/metadata"
)

// ErrMissingTypeName is returned when a documented prop has a type record
// without a name. It points at a defect in the metadata extractor.
var ErrMissingTypeName = errors.New("prop type has no name")

// Args maps prop names to story arguments in insertion order.
type Args struct {
	pairs *orderedmap.OrderedMap[string, ArgDescriptor]
}

func newArgs() *Args {
	return &Args{pairs: orderedmap.New[string, ArgDescriptor]()}
}

// Build derives story arguments from a component's props.
//
// Props are ordered with Order, filtered with Retained and converted with
// Describe. A later prop with a duplicate name replaces the earlier value
// but keeps its position. props is not modified.
func Build(props []metadata.PropertyDescriptor) (*Args, error) {
	visible := Visible(props)
	args := newArgs()
	for _, prop := range visible {
		arg, err := Describe(prop)
		if err != nil {
			return nil, err
		}
		args = args.with(arg)
	}
	return args, nil
}

// with returns the accumulator with arg inserted under its name.
func (a *Args) with(arg ArgDescriptor) *Args {
	a.pairs.Set(arg.Name, arg)
	return a
}

// Describe converts one documented prop into a story argument.
func Describe(prop metadata.PropertyDescriptor) (ArgDescriptor, error) {
	typeName, ok := prop.Type.TypeName()
	if !ok {
		return ArgDescriptor{}, fmt.Errorf("prop %q: %w", prop.Name, ErrMissingTypeName)
	}

	arg := ArgDescriptor{
		Name: prop.Name,
		Type: ArgType{
			Name:     typeName,
			Required: prop.Required,
		},
	}
	if prop.Description != nil {
		text := prop.Description.Text
		arg.Description = &text
	}

	if options, ok := ParseUnion(typeName); ok {
		arg.Control = &Control{Type: ControlSelect, Options: options}
		arg.Type.Name = TypeEnum
	}

	return arg, nil
}

// Len returns the number of arguments.
func (a *Args) Len() int {
	return a.pairs.Len()
}

// Get returns the argument for a prop name.
func (a *Args) Get(name string) (ArgDescriptor, bool) {
	return a.pairs.Get(name)
}

// Keys returns the argument names in insertion order.
func (a *Args) Keys() []string {
	keys := make([]string, 0, a.pairs.Len())
	for pair := a.pairs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns the arguments in insertion order.
func (a *Args) Values() []ArgDescriptor {
	values := make([]ArgDescriptor, 0, a.pairs.Len())
	for pair := a.pairs.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}

// MarshalJSON encodes the arguments as a JSON object in insertion order.
func (a *Args) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.writeCompact(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON renders the arguments with two-space indentation, in insertion
// order and without HTML escaping, ready to show in a code block.
func (a *Args) JSON() (string, error) {
	var compact bytes.Buffer
	if err := a.writeCompact(&compact); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("indent story args: %w", err)
	}
	return out.String(), nil
}

func (a *Args) writeCompact(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for pair := a.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if pair != a.pairs.Oldest() {
			buf.WriteByte(',')
		}
		if err := encodeRaw(buf, pair.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeRaw(buf, pair.Value); err != nil {
			return fmt.Errorf("encode story arg %q: %w", pair.Key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// encodeRaw appends the JSON encoding of v without HTML escaping.
func encodeRaw(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline.
	return nil
}

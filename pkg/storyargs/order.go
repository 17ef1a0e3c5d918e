package storyargs

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gnana997/propdoc/pkg/metadata"
)

// trailingPrefix marks instrumentation props (bsPrefix, bsSize, ...) that are
// listed after every other prop.
const trailingPrefix = "bs"

// trailingKey sorts after typical identifiers.
const trailingKey = "zzzzzz"

// SortKey returns the key a prop is ordered by.
func SortKey(name string) string {
	if strings.HasPrefix(name, trailingPrefix) {
		return trailingKey
	}
	return name
}

// Order returns a copy of props stably sorted by SortKey.
func Order(props []metadata.PropertyDescriptor) []metadata.PropertyDescriptor {
	ordered := slices.Clone(props)
	slices.SortStableFunc(ordered, func(a, b metadata.PropertyDescriptor) int {
		return cmp.Compare(SortKey(a.Name), SortKey(b.Name))
	})
	return ordered
}

// Retained reports whether a prop is documented: it has a type and is not
// tagged private or ignore.
func Retained(prop metadata.PropertyDescriptor) bool {
	return prop.Type != nil &&
		!prop.Doclets.Has(metadata.TagPrivate) &&
		!prop.Doclets.Has(metadata.TagIgnore)
}

// Visible returns the documented props in display order.
func Visible(props []metadata.PropertyDescriptor) []metadata.PropertyDescriptor {
	ordered := Order(props)
	visible := ordered[:0]
	for _, prop := range ordered {
		if Retained(prop) {
			visible = append(visible, prop)
		}
	}
	return visible
}

package docpage

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/gnana997/propdoc/pkg/metadata"
)

// DisplayNames returns the heading name and the import name of a component.
//
// A component exported as a static member of another (ExportedBy) is shown
// as Parent.Member, e.g. ModalHeader exported by Modal becomes Modal.Header,
// and is imported through its parent.
func DisplayNames(comp *metadata.ComponentMetadata) (name, importName string) {
	name = comp.DisplayName
	importName = comp.DisplayName

	if comp.ExportedBy == nil || *comp.ExportedBy == "" {
		return name, importName
	}

	parent := *comp.ExportedBy
	parts := strings.Split(name, parent)
	name = parent + "." + parts[len(parts)-1]
	importName = parent
	return name, importName
}

// AnchorID returns the fragment id of a component's API section.
func AnchorID(name string) string {
	return strcase.ToKebab(name) + "-props"
}

// Package docpage renders the API section of a component documentation
// page: heading with anchor, source link, import example, description,
// prop table and the derived story args.
package docpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/storyargs"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Options configures a Renderer.
type Options struct {
	// Heading is the heading level of the component name (1-6, default 3).
	Heading int
	// Package is the module components are imported from.
	Package string
	// SourceURL is the base URL of component sources. Empty disables the
	// source link.
	SourceURL string
	// SourceExt is appended to the import name to form the source file name.
	SourceExt string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Heading:   3,
		Package:   "react-bootstrap",
		SourceExt: ".js",
	}
}

// Page is the view model of one component API section.
type Page struct {
	ID              string
	Name            string
	ImportName      string
	ImportExample   string
	SourceHref      string
	HeadingOpen     template.HTML
	HeadingClose    template.HTML
	DescriptionHTML template.HTML
	Rows            []PropRow
	StoryArgs       string
}

// PropRow is one line of the prop table.
type PropRow struct {
	Name            string
	Type            string
	Required        bool
	Default         string
	DescriptionHTML template.HTML
	Deprecated      bool
	DeprecationNote string
	Notes           []string
}

// Renderer turns component metadata into HTML. It is safe for concurrent use.
type Renderer struct {
	opts     Options
	tmpl     *template.Template
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer parses the embedded templates. Zero fields of opts fall back
// to DefaultOptions.
func NewRenderer(opts Options) (*Renderer, error) {
	defaults := DefaultOptions()
	if opts.Heading == 0 {
		opts.Heading = defaults.Heading
	}
	if opts.Heading < 1 || opts.Heading > 6 {
		return nil, fmt.Errorf("heading level must be between 1 and 6, got %d", opts.Heading)
	}
	if opts.Package == "" {
		opts.Package = defaults.Package
	}
	if opts.SourceExt == "" {
		opts.SourceExt = defaults.SourceExt
	}

	tmpl, err := template.New("docpage").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{
		opts:     opts,
		tmpl:     tmpl,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
	}, nil
}

// BuildPage assembles the view model for a component.
func (r *Renderer) BuildPage(comp *metadata.ComponentMetadata) (*Page, error) {
	args, err := storyargs.Build(comp.Props)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", comp.DisplayName, err)
	}
	argsJSON, err := args.JSON()
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", comp.DisplayName, err)
	}

	name, importName := DisplayNames(comp)
	id := AnchorID(name)

	descHTML, err := r.descriptionHTML(comp.Description)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", comp.DisplayName, err)
	}

	page := &Page{
		ID:              id,
		Name:            name,
		ImportName:      importName,
		ImportExample:   fmt.Sprintf("import %s from '%s/%s';", importName, r.opts.Package, importName),
		HeadingOpen:     template.HTML(fmt.Sprintf(`<h%d id="%s" class="my-3">`, r.opts.Heading, template.HTMLEscapeString(id))),
		HeadingClose:    template.HTML(fmt.Sprintf("</h%d>", r.opts.Heading)),
		DescriptionHTML: descHTML,
		StoryArgs:       argsJSON,
	}
	if r.opts.SourceURL != "" {
		page.SourceHref = strings.TrimSuffix(r.opts.SourceURL, "/") + "/" + importName + r.opts.SourceExt
	}

	for _, prop := range storyargs.Visible(comp.Props) {
		row, err := r.propRow(prop)
		if err != nil {
			return nil, fmt.Errorf("component %q prop %q: %w", comp.DisplayName, prop.Name, err)
		}
		page.Rows = append(page.Rows, row)
	}

	return page, nil
}

func (r *Renderer) propRow(prop metadata.PropertyDescriptor) (PropRow, error) {
	row := PropRow{
		Name:     prop.Name,
		Type:     typeLabel(prop.Type),
		Required: prop.Required,
	}
	if prop.DefaultValue != nil {
		row.Default = prop.DefaultValue.Value
	}

	desc, err := r.descriptionHTML(prop.Description)
	if err != nil {
		return PropRow{}, err
	}
	row.DescriptionHTML = desc

	if note, ok := prop.Doclets.Value(metadata.TagDeprecated); ok {
		row.Deprecated = true
		row.DeprecationNote = note
	}
	if controlled, ok := prop.Doclets.Value(metadata.TagControllable); ok && controlled != "" {
		row.Notes = append(row.Notes, fmt.Sprintf("controls %s", controlled))
	}
	return row, nil
}

// typeLabel is the type shown in the prop table. Unions, enums and custom
// validators show their source text when the extractor kept it.
func typeLabel(t *metadata.PropType) string {
	name, _ := t.TypeName()
	switch name {
	case "union", "enum", "custom":
		if t.Raw != nil && *t.Raw != "" {
			return *t.Raw
		}
	}
	return name
}

// descriptionHTML prefers pre-rendered HTML and otherwise renders the text
// as Markdown. The result is always sanitized.
func (r *Renderer) descriptionHTML(d *metadata.Description) (template.HTML, error) {
	if d == nil {
		return "", nil
	}

	raw, ok := d.HTML()
	if !ok {
		if strings.TrimSpace(d.Text) == "" {
			return "", nil
		}
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(d.Text), &buf); err != nil {
			return "", fmt.Errorf("render description: %w", err)
		}
		raw = buf.String()
	}

	return template.HTML(strings.TrimSpace(r.policy.Sanitize(raw))), nil
}

// Render writes the API section of comp to w.
func (r *Renderer) Render(w io.Writer, comp *metadata.ComponentMetadata) error {
	page, err := r.BuildPage(comp)
	if err != nil {
		return err
	}
	return r.RenderPage(w, page)
}

// RenderPage writes an already built page to w.
func (r *Renderer) RenderPage(w io.Writer, page *Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "component_api", page); err != nil {
		return fmt.Errorf("render component %q: %w", page.Name, err)
	}
	return nil
}

// RenderString renders the API section of comp to a string.
func (r *Renderer) RenderString(comp *metadata.ComponentMetadata) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, comp); err != nil {
		return "", err
	}
	return buf.String(), nil
}

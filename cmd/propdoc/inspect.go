package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/storyargs"
)

const maxWidth = 80

func newInspectCmd(a *app) *cobra.Command {
	var showArgs bool
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show a component's documented props",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			loader := a.newLoader()
			defer loader.Close()

			qs, err := a.loadQuery(loader)
			if err != nil {
				return err
			}
			comp, ok := qs.GetComponent(args[0])
			if !ok {
				return fmt.Errorf("component %q not found", args[0])
			}
			return printComponentHuman(a.stdout, comp, showArgs)
		},
	}
	cmd.Flags().BoolVar(&showArgs, "args", false, "include the story args")
	return cmd
}

// printComponentHuman prints a human-readable component summary.
func printComponentHuman(w io.Writer, comp *metadata.ComponentMetadata, showArgs bool) error {
	name, importName := docpage.DisplayNames(comp)
	fmt.Fprintf(w, "%s  [#%s]\n", name, docpage.AnchorID(name))

	if comp.Description != nil && comp.Description.Text != "" {
		fmt.Fprintln(w)
		printWrapped(w, comp.Description.Text, 0, maxWidth)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Import")
	fmt.Fprintf(w, "  import %s\n", importName)

	fmt.Fprintln(w)
	visible := storyargs.Visible(comp.Props)
	printPropsSection(w, "Props", visible)
	if hidden := len(comp.Props) - len(visible); hidden > 0 {
		fmt.Fprintf(w, "  (%d undocumented or private props omitted)\n", hidden)
	}

	if len(comp.Composes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Composes  %s\n", strings.Join(comp.Composes, ", "))
	}

	if !showArgs {
		return nil
	}
	built, err := storyargs.Build(comp.Props)
	if err != nil {
		return fmt.Errorf("failed to build story args: %w", err)
	}
	text, err := built.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Story args")
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// printPropsSection renders the props table with dynamic column widths.
func printPropsSection(w io.Writer, title string, props []metadata.PropertyDescriptor) {
	if len(props) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	nameW, typeW, defW := len("NAME"), len("TYPE"), len("DEFAULT")
	for _, p := range props {
		nameW = max(nameW, len(p.Name))
		typeW = max(typeW, len(propTypeLabel(p)))
		defW = max(defW, len(propDefault(p)))
	}

	sepLen := nameW + typeW + 5 + defW + 4
	fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %-*s\n", nameW, "NAME", typeW, "TYPE", "REQ", defW, "DEFAULT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", sepLen))

	for _, p := range props {
		req := "no"
		if p.Required {
			req = "yes"
		}
		deprecated := ""
		if p.Doclets.Has(metadata.TagDeprecated) {
			deprecated = " [deprecated]"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %-*s%s\n",
			nameW, p.Name, typeW, propTypeLabel(p), req, defW, propDefault(p), deprecated)

		if p.Description != nil && p.Description.Text != "" {
			fmt.Fprintf(w, "  %s  %s\n", strings.Repeat(" ", nameW), p.Description.Text)
		}
		typeName, _ := p.Type.TypeName()
		if options, ok := storyargs.ParseUnion(typeName); ok {
			label := strings.Repeat(" ", nameW)
			fmt.Fprintf(w, "  %s  options: %s\n", label, wrapOptions(strings.Join(options, " | "), nameW+12))
		}
	}
}

func propTypeLabel(p metadata.PropertyDescriptor) string {
	name, _ := p.Type.TypeName()
	if _, ok := storyargs.ParseUnion(name); ok {
		return storyargs.TypeEnum
	}
	return name
}

func propDefault(p metadata.PropertyDescriptor) string {
	if p.DefaultValue == nil || p.DefaultValue.Value == "" {
		return "—"
	}
	return p.DefaultValue.Value
}

// wrapOptions wraps the options string if it exceeds maxWidth.
func wrapOptions(options string, indent int) string {
	if indent+len(options) <= maxWidth {
		return options
	}
	parts := strings.Split(options, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3 // " | "
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range strings.Fields(text) {
		switch {
		case line == prefix:
			line += word
		case len(line)+len(word)+1 > width:
			fmt.Fprintln(w, line)
			line = prefix + word
		default:
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}

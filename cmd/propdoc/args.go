package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/storyargs"
)

func newArgsCmd(a *app) *cobra.Command {
	var component string
	cmd := &cobra.Command{
		Use:   "args <file>",
		Short: "Print the story args of a component from a metadata file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			loader := a.newLoader()
			defer loader.Close()

			set, err := loader.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to load metadata: %w", err)
			}
			comp, err := pickComponent(set, component)
			if err != nil {
				return err
			}

			built, err := storyargs.Build(comp.Props)
			if err != nil {
				return fmt.Errorf("failed to build story args for %s: %w", comp.DisplayName, err)
			}
			text, err := built.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, text)
			return nil
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "component to use when the file holds several")
	return cmd
}

// pickComponent selects name from set, or the only component when name is
// empty.
func pickComponent(set *metadata.Set, name string) (*metadata.ComponentMetadata, error) {
	if name == "" {
		switch len(set.Components) {
		case 0:
			return nil, fmt.Errorf("file holds no components")
		case 1:
			return &set.Components[0], nil
		default:
			return nil, fmt.Errorf("file holds %d components (%s); pass --component",
				len(set.Components), strings.Join(componentNames(set), ", "))
		}
	}

	for i := range set.Components {
		if strings.EqualFold(set.Components[i].DisplayName, name) {
			return &set.Components[i], nil
		}
	}
	return nil, fmt.Errorf("component %q not found (available: %s)", name, strings.Join(componentNames(set), ", "))
}

func componentNames(set *metadata.Set) []string {
	names := make([]string, 0, len(set.Components))
	for _, c := range set.Components {
		names = append(names, c.DisplayName)
	}
	sort.Strings(names)
	return names
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"campaign-flow/internal/ui"
	"campaign-flow/pkg/flowfile"
	"campaign-flow/pkg/flowgraph"
)

func catalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the node types in palette order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, group := range a.catalog().Palette() {
				ui.Info.Fprintln(out, strings.ToUpper(string(group.Category)))
				var rows [][]string
				for _, e := range group.Entries {
					rows = append(rows, []string{ui.Swatch(e.Color) + " " + string(e.Type), e.Label, e.Description})
				}
				ui.Table(out, []string{"Type", "Label", "Description"}, rows)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func fieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <file> <node-id>",
		Short: "Show the property fields of one node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			g := f.Graph()
			n, ok := g.Node(args[1])
			if !ok {
				return fmt.Errorf("node %q not found", args[1])
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s %s\n", ui.Brand.Sprint(n.Label), ui.Subtle.Sprintf("(%s)", n.Type))
			var rows [][]string
			for _, field := range flowgraph.Fields(n, a.cfg.Editor.Team) {
				rows = append(rows, []string{field.Key, string(field.Kind), fieldValue(field)})
			}
			ui.Table(out, []string{"Field", "Kind", "Value"}, rows)
			return nil
		},
	}
}

// fieldValue shows select values by their option label and appends the SMS
// counter when present.
func fieldValue(f flowgraph.Field) string {
	value := f.Value
	for _, o := range f.Options {
		if o.Value == f.Value {
			value = fmt.Sprintf("%s (%s)", o.Label, o.Value)
			break
		}
	}
	if f.SMS != nil {
		value = fmt.Sprintf("%s [%d chars, %d segment(s)]", value, f.SMS.Characters, f.SMS.Segments)
	}
	return value
}

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"campaign-flow/internal/ui"
	"campaign-flow/pkg/flowfile"
	"campaign-flow/pkg/flowgraph"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a flow for structural problems and missing fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			issues := flowgraph.Validate(f.Graph())
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s %s is ready to activate\n", ui.StatusIcon(true), f.Name)
				return nil
			}

			errCount := 0
			for _, is := range issues {
				fmt.Fprintf(out, "%s %-18s %s\n", ui.SeverityIcon(is.Severity), is.Code, is.Message)
				if is.Severity == flowgraph.SeverityError {
					errCount++
				}
			}
			if errCount > 0 {
				return fmt.Errorf("%s has %d error(s)", f.Name, errCount)
			}
			return nil
		},
	}
}

func layersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers <file>",
		Short: "Show the flow grouped by journey depth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			layers, err := flowgraph.Layers(f.Graph())
			if err != nil && !errors.Is(err, flowgraph.ErrCycleDetected) {
				return err
			}
			var rows [][]string
			for i, ids := range layers {
				rows = append(rows, []string{strconv.Itoa(i + 1), strings.Join(ids, ", ")})
			}
			ui.Table(out, []string{"Layer", "Nodes"}, rows)
			if err != nil {
				ui.Warn.Fprintln(out, "  the last layer loops back on itself")
			}
			return nil
		},
	}
}

func arrangeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "arrange <file>",
		Short: "Lay the flow out by journey layer and save the positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}

			g := f.Graph()
			g = flowgraph.NewReducer(a.catalog()).Apply(g, flowgraph.ReplacePositions{
				Positions: flowgraph.Arrange(g, flowgraph.Origin),
			})
			f.Nodes, f.Edges = g.Nodes, g.Edges

			if output == "" {
				output = args[0]
			}
			if err := flowfile.Write(output, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s arranged %d nodes into %s\n", ui.StatusIcon(true), len(f.Nodes), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of overwriting the input")
	return cmd
}

func applyCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "apply <file> <commands>",
		Short: "Apply editor commands (one JSON object per line) to a flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			script, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read commands: %w", err)
			}
			out := cmd.OutOrStdout()

			r := flowgraph.NewReducer(a.catalog())
			g := f.Graph()
			scanner := bufio.NewScanner(bytes.NewReader(script))
			for line := 1; scanner.Scan(); line++ {
				raw := bytes.TrimSpace(scanner.Bytes())
				if len(raw) == 0 || raw[0] == '#' {
					continue
				}
				c, err := flowgraph.DecodeCommand(raw)
				if err != nil {
					return fmt.Errorf("%s:%d: %w", args[1], line, err)
				}
				var changed bool
				g, changed = r.Reduce(g, c)
				fmt.Fprintf(out, "%s %s:%d\n", ui.StatusIcon(changed), args[1], line)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read commands: %w", err)
			}
			f.Nodes, f.Edges = g.Nodes, g.Edges

			if output == "" {
				output = args[0]
			}
			return flowfile.Write(output, f)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of overwriting the input")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"campaign-flow/internal/ui"
	"campaign-flow/pkg/flowfile"
	"campaign-flow/services/flow"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a flow file as JSON or YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			if err := flowfile.Write(args[1], f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", ui.StatusIcon(true), args[1])
			return nil
		},
	}
}

func sampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample <out>",
		Short: "Write the New Contact Welcome sample flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := flow.SampleFlow()
			f := &flowfile.File{Name: s.Name, Nodes: s.Nodes, Edges: s.Edges}
			if err := flowfile.Write(args[0], f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", ui.StatusIcon(true), args[0])
			return nil
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"campaign-flow/internal/ui"
	"campaign-flow/pkg/flowfile"
	"campaign-flow/pkg/flowgraph"
	"campaign-flow/services/flow"
)

func previewCmd(a *app) *cobra.Command {
	var (
		branches map[string]string
		req      flow.PreviewRequest
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Dry-run a flow for a simulated contact",
		Example: `  flowctl preview welcome.yaml --contact first_name=Alice,email=alice@example.com
  flowctl preview welcome.yaml --branch opened=yes --tag vip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flowfile.Read(args[0])
			if err != nil {
				return err
			}
			req.Branches = make(map[string]flowgraph.Handle, len(branches))
			for id, h := range branches {
				handle := flowgraph.Handle(h)
				if handle != flowgraph.HandleYes && handle != flowgraph.HandleNo {
					return fmt.Errorf("--branch %s=%s: want yes or no", id, h)
				}
				req.Branches[id] = handle
			}

			engine := flow.NewEngine(flow.NewRegistry(a.cfg.Editor.Team))
			results, err := engine.Preview(cmd.Context(), f.Graph(), flow.NewPreviewState(req))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			var rows [][]string
			for _, s := range results.Steps {
				result, _ := s.Output["message"].(string)
				if s.Error != "" {
					result = ui.Bad.Sprint(s.Error)
				}
				rows = append(rows, []string{
					strconv.Itoa(s.StepNumber),
					s.NodeID,
					s.NodeType,
					elapsed(s.ElapsedSeconds),
					result,
				})
			}
			ui.Table(out, []string{"#", "Node", "Type", "At", "Result"}, rows)

			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s %s after %s\n", ui.StatusIcon(results.Status == "completed"), results.Status, results.TotalDelay)
			if len(results.Contact.Tags) > 0 {
				fmt.Fprintf(out, "  tags:  %s\n", ui.Info.Sprint(strings.Join(results.Contact.Tags, ", ")))
			}
			if results.Contact.Stage != "" {
				fmt.Fprintf(out, "  stage: %s\n", ui.Info.Sprint(results.Contact.Stage))
			}
			if results.Status != "completed" {
				return fmt.Errorf("preview %s", results.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&branches, "branch", nil, "force a condition outcome, node=yes|no")
	cmd.Flags().StringToStringVar(&req.Contact, "contact", nil, "placeholder values, e.g. first_name=Alice")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "tags the contact starts with")
	cmd.Flags().StringVar(&req.Stage, "stage", "", "pipeline stage the contact starts in")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw preview results")
	return cmd
}

func elapsed(seconds int64) string {
	return "+" + flow.FormatDelay(time.Duration(seconds)*time.Second)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"campaign-flow/internal/ui"
	"campaign-flow/pkg/config"
	"campaign-flow/pkg/flowgraph"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
}

func (a *app) catalog() *flowgraph.Catalog {
	return flowgraph.NewCatalog(a.cfg.Editor.DefaultSender)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "flowctl",
		Short: "Work with campaign flow files",
		Long: ui.Brand.Sprint("flowctl") + ": validate, lay out and preview campaign flows\n" +
			ui.Subtle.Sprint("Flow files are JSON or YAML, picked by extension"),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("FLOW_CONFIG"), "TOML config with editor settings")

	root.AddCommand(
		validateCmd(),
		layersCmd(),
		arrangeCmd(a),
		applyCmd(a),
		previewCmd(a),
		catalogCmd(a),
		fieldsCmd(a),
		convertCmd(),
		sampleCmd(),
	)
	return root
}

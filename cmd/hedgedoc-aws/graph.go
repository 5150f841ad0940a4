package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/hedgedoc-aws-go/internal/graph"
)

func newGraphCmd(g *globalOptions) *cobra.Command {
	var (
		outputFormat   string
		includeOutputs bool
		cluster        string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of resource dependencies",
		Long: `Generate a DOT or Mermaid graph of the deployment plan's dependencies.

The output can be rendered with Graphviz:
    hedgedoc-aws graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    hedgedoc-aws graph -f mermaid

Examples:
    hedgedoc-aws graph
    hedgedoc-aws graph --outputs            # include stack outputs
    hedgedoc-aws graph --cluster service    # cluster by AWS service
    hedgedoc-aws graph --cluster none`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), g, outputFormat, includeOutputs, cluster)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&includeOutputs, "outputs", false, "Include stack output nodes in the graph")
	cmd.Flags().StringVar(&cluster, "cluster", "component", "Cluster resources by: component, service or none")

	return cmd
}

func runGraph(ctx context.Context, g *globalOptions, format string, includeOutputs bool, cluster string) error {
	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:         graphFormat,
		IncludeOutputs: includeOutputs,
	}
	switch cluster {
	case "component":
		gen.ClusterByComponent = true
	case "service":
		gen.ClusterByType = true
	case "none":
	default:
		return fmt.Errorf("unknown cluster mode: %s (use 'component', 'service' or 'none')", cluster)
	}

	cfg, err := g.loadOffline()
	if err != nil {
		return err
	}
	t, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn))
	if err != nil {
		return err
	}

	return gen.Generate(t, os.Stdout)
}

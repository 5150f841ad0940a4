package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

func newPreviewCmd(g *globalOptions) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the deployment plan without touching AWS",
		Long: `Preview runs the stack against an offline provider and prints the plan as a
CloudFormation-shaped template. Secrets are shown as [secret].

Examples:
    hedgedoc-aws preview
    hedgedoc-aws preview --format yaml
    hedgedoc-aws preview -c prod.yaml -o plan.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), g, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runPreview(ctx context.Context, g *globalOptions, format, outputFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := g.loadOffline()
	if err != nil {
		return err
	}

	t, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn))
	return outputPlan(planResult(cfg, t, err), format, outputFile)
}

func outputPlan(result hedgedoc.PlanResult, format, outputFile string) error {
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("preview failed")
	}

	data, err := encodeTemplate(&result.Template, format)
	if err != nil {
		return err
	}
	if err := writeOutput(data, outputFile); err != nil {
		return err
	}
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Wrote plan for %s (%d resources) to %s\n", result.Stack, len(result.Resources), outputFile)
	}
	return nil
}

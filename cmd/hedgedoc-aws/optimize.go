package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/optimizer"
)

var validCategories = map[string]bool{
	"all":         true,
	"security":    true,
	"cost":        true,
	"performance": true,
	"reliability": true,
}

// newOptimizeCmd creates the "optimize" subcommand for suggesting improvements.
func newOptimizeCmd(g *globalOptions) *cobra.Command {
	var (
		outputFormat string
		category     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Suggest improvements to the deployment plan",
		Long: `Optimize renders the plan and suggests improvements for security, cost,
performance, and reliability.

The default plan favors a cheap, disposable deployment (no backups, one
task, magnetic storage); optimize lists what to change for a long-lived one.

Examples:
    hedgedoc-aws optimize
    hedgedoc-aws optimize --category security
    hedgedoc-aws optimize -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validCategories[category] {
				return fmt.Errorf("invalid category: %s (valid: all, security, cost, performance, reliability)", category)
			}
			return runOptimize(cmd.Context(), g, outputFormat, category)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&category, "category", "all", "Category: all, security, cost, performance, or reliability")

	return cmd
}

func runOptimize(ctx context.Context, g *globalOptions, format, category string) error {
	cfg, err := g.loadOffline()
	if err != nil {
		return err
	}
	t, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn))
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}

	optResult := optimizer.Optimize(t, optimizer.Options{Category: category})
	return outputOptimizeResult(hedgedoc.OptimizeResult{
		Success:       true,
		Suggestions:   optResult.Suggestions,
		ResourceCount: len(t.Resources),
		Summary:       optResult.Summary,
	}, format)
}

func outputOptimizeResult(result hedgedoc.OptimizeResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(result.Suggestions) == 0 {
			fmt.Printf("Analyzed %d resources. No optimization suggestions.\n", result.ResourceCount)
			return nil
		}

		fmt.Printf("Analyzed %d resources. Found %d suggestions:\n\n", result.ResourceCount, result.Summary.Total)

		byCat := map[string][]hedgedoc.OptimizeSuggestion{}
		for _, s := range result.Suggestions {
			byCat[s.Category] = append(byCat[s.Category], s)
		}

		for _, cat := range []string{"security", "cost", "performance", "reliability"} {
			suggestions := byCat[cat]
			if len(suggestions) == 0 {
				continue
			}

			fmt.Printf("=== %s (%d) ===\n", capitalize(cat), len(suggestions))
			for _, s := range suggestions {
				fmt.Printf("\n[%s] %s\n", s.Severity, s.Title)
				fmt.Printf("  Resource: %s (%s)\n", s.Resource, s.Type)
				fmt.Printf("  %s\n", s.Description)
				fmt.Printf("  Suggestion: %s\n", s.Suggestion)
			}
			fmt.Println()
		}

		fmt.Printf("Summary: %d security, %d cost, %d performance, %d reliability\n",
			result.Summary.Security, result.Summary.Cost,
			result.Summary.Performance, result.Summary.Reliability)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/differ"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
)

func newDiffCmd(g *globalOptions) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff [plan1] [plan2]",
		Short: "Compare deployment plans",
		Long: `Diff compares two deployment plans resource by resource.

With no arguments the plan recorded in state is compared with the plan the
current configuration produces. With one argument that plan file is the
old side; with two, both sides are files written by preview.

Examples:
    hedgedoc-aws diff
    hedgedoc-aws diff old.json
    hedgedoc-aws diff old.json new.yaml --format json`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), g, args, outputFormat, ignoreOrder)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

func runDiff(ctx context.Context, g *globalOptions, files []string, format string, ignoreOrder bool) error {
	opts := differ.Options{IgnoreOrder: ignoreOrder}

	if len(files) == 2 {
		result, err := differ.CompareFiles(files[0], files[1], opts)
		if err != nil {
			return err
		}
		return outputDiff(result, format)
	}

	old, cfg, err := oldPlan(ctx, g, files)
	if err != nil {
		return err
	}
	current, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn))
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	result, err := differ.Compare(old, current, opts)
	if err != nil {
		return err
	}
	return outputDiff(result, format)
}

// oldPlan returns the left side of a diff: the named file, or the plan
// recorded in state. The returned configuration spans the zones the
// recorded plan used.
func oldPlan(ctx context.Context, g *globalOptions, files []string) (*hedgedoc.Template, *config.Config, error) {
	cfg, err := g.loadOffline()
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 1 {
		t, err := differ.LoadTemplate(files[0])
		return t, cfg, err
	}

	store, err := openStore(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	snap, err := store.Load(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil, fmt.Errorf("stack %s has no state; pass a plan file to compare with", cfg.Name)
	}
	if err != nil {
		return nil, nil, err
	}
	if snap.Plan == nil {
		return nil, nil, fmt.Errorf("state of stack %s records no plan", cfg.Name)
	}
	if len(cfg.Zones) == 0 {
		cfg.Zones = snap.Zones
	}
	return snap.Plan, cfg, nil
}

func outputDiff(result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Diff    hedgedoc.TemplateDiff `json:"diff"`
			Summary hedgedoc.DiffSummary  `json:"summary"`
			Outputs []string              `json:"outputs,omitempty"`
		}{result.Diff, result.Summary, result.Outputs}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Empty() {
			fmt.Println("No differences.")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Printf("+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Printf("- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Printf("~ %s (%s)\n", e.Resource, e.Type)
			for _, c := range e.Changes {
				fmt.Printf("    %s\n", c)
			}
		}
		for _, name := range result.Outputs {
			fmt.Printf("~ output %s\n", name)
		}
		s := result.Summary
		fmt.Printf("\n%d added, %d removed, %d modified\n", s.Added, s.Removed, s.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
)

func newOutputsCmd(g *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "Show the outputs of a deployed stack",
		Long: `Outputs prints the values the stack exported when it was deployed, such as
the hostname HedgeDoc is served on.

Examples:
    hedgedoc-aws outputs
    hedgedoc-aws outputs --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadState(cmd.Context(), g)
			if err != nil {
				return err
			}
			return outputOutputs(snap, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func newListCmd(g *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the resources recorded in state",
		Long: `List displays every resource the deployed stack created, with its provider id.

Examples:
    hedgedoc-aws list
    hedgedoc-aws list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadState(cmd.Context(), g)
			if err != nil {
				return err
			}
			return outputListResult(listResources(snap), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

// loadState reads the stack's snapshot without resolving secrets.
func loadState(ctx context.Context, g *globalOptions) (*state.Snapshot, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	snap, err := store.Load(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return nil, fmt.Errorf("stack %s is not deployed", cfg.Name)
	}
	return snap, err
}

func outputOutputs(snap *state.Snapshot, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(snap.Outputs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(snap.Outputs) == 0 {
			fmt.Println("No outputs.")
			return nil
		}
		names := make([]string, 0, len(snap.Outputs))
		for name := range snap.Outputs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %s\n", name, snap.Outputs[name])
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

// listResources converts the snapshot's resources, sorted by name.
func listResources(snap *state.Snapshot) []hedgedoc.ListResource {
	names := make(map[string]string, len(snap.Components))
	for _, c := range snap.Components {
		names[c.URN] = c.Name
	}

	out := make([]hedgedoc.ListResource, 0, len(snap.Resources))
	for _, r := range snap.Resources {
		out = append(out, hedgedoc.ListResource{
			Name:   r.Name,
			Type:   r.Type,
			ID:     r.ID,
			Parent: names[r.Parent],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func outputListResult(resources []hedgedoc.ListResource, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(resources, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(resources) == 0 {
			fmt.Println("No resources found.")
			return nil
		}

		fmt.Printf("Deployed resources (%d):\n\n", len(resources))
		for _, res := range resources {
			fmt.Printf("  %s: %s (%s)\n", res.Name, res.Type, res.ID)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

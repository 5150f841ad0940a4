package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
)

func newDestroyCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource recorded in state",
		Long: `Destroy deletes the stack's resources in reverse dependency order: services
before the load balancer they sit behind, subnets before their VPC.

If a deletion fails, the resources that remain are written back to state
so destroy can be run again.

Examples:
    hedgedoc-aws destroy
    hedgedoc-aws destroy -c prod.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDestroy(cmd.Context(), g)
		},
	}
	return cmd
}

func runDestroy(ctx context.Context, g *globalOptions) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	s, err := connectConfig(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, &s.aws)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx)
	if errors.Is(err, state.ErrNotFound) {
		fmt.Printf("Stack %s has no state; nothing to destroy.\n", cfg.Name)
		return nil
	}
	if err != nil {
		return err
	}

	total := len(snap.Resources)
	fmt.Printf("Destroying %s (%d resources)...\n", snap.Stack, total)

	logger := g.logger(slog.LevelInfo)
	destroyErr := engine.Destroy(ctx, deployProvider(s.aws, logger), snap, engine.DestroyOptions{
		Logger:   logger,
		Parallel: cfg.Parallel,
	})

	stateCtx, cancel := detach(ctx)
	defer cancel()
	if snap.Empty() {
		if err := store.Delete(stateCtx); err != nil {
			return err
		}
		fmt.Printf("\nDeleted %d resources.\n", total)
		return destroyErr
	}

	if err := store.Save(stateCtx, snap); err != nil {
		return errors.Join(destroyErr, fmt.Errorf("saving state: %w", err))
	}
	fmt.Fprintf(os.Stderr, "%d of %d resources remain; run destroy again once the errors are resolved.\n", len(snap.Resources), total)
	return destroyErr
}

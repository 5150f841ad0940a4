package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/differ"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	stack "github.com/lex00/hedgedoc-aws-go/internal/stacks/hedgedoc"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
	"github.com/lex00/hedgedoc-aws-go/internal/zones"
)

// errStackExists is returned by up when the stack already has state and
// its definition changed.
var errStackExists = errors.New("stack already exists; run destroy before deploying a changed definition")

func newUpCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create the stack in AWS",
		Long: `Up creates every resource of the stack through the AWS Cloud Control API and
records what it created in the state backend. IAM access keys and ACM
certificates are created through their own APIs.

A stack that already has state is not updated in place: up prints the
difference between the recorded plan and the current one and stops.

Examples:
    hedgedoc-aws up
    hedgedoc-aws up -c prod.yaml --env-file prod.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), g)
		},
	}
	return cmd
}

func runUp(ctx context.Context, g *globalOptions) error {
	s, err := g.connect(ctx)
	if err != nil {
		return err
	}
	cfg := s.cfg
	logger := g.logger(slog.LevelInfo)

	store, err := openStore(ctx, cfg, &s.aws)
	if err != nil {
		return err
	}

	lister := zones.NewEC2Lister(s.aws)
	selected, err := zones.Select(ctx, lister, cfg.Network.ZoneCount)
	if err != nil {
		return err
	}
	cfg.Zones = selected

	certificate := onceCertificate()
	plan, _, err := buildPlan(ctx, cfg, g.logger(slog.LevelWarn), stack.WithCertificateGenerator(certificate))
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	existing, err := store.Load(ctx)
	switch {
	case err == nil:
		return compareExisting(existing, plan)
	case !errors.Is(err, state.ErrNotFound):
		return err
	}

	fmt.Printf("Deploying %s to %s (%d resources)...\n", cfg.Name, cfg.Region, len(plan.Resources))

	d, runErr := engine.Run(ctx, engine.Options{
		Stack:    cfg.Name,
		Provider: deployProvider(s.aws, logger),
		Logger:   logger,
		Parallel: cfg.Parallel,
	}, func(d *engine.Deployment) error {
		_, err := stack.New(ctx, d, cfg, lister, stack.WithCertificateGenerator(certificate))
		return err
	})
	if d == nil {
		return runErr
	}

	stateCtx, cancel := detach(ctx)
	defer cancel()
	snap := d.Snapshot(stateCtx)
	snap.Zones = selected
	snap.Plan = plan
	if runErr == nil || len(snap.Resources) > 0 {
		if err := store.Save(stateCtx, snap); err != nil {
			return errors.Join(runErr, fmt.Errorf("saving state: %w", err))
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Deployment failed after creating %d resources; they are recorded in state, run destroy to remove them.\n", len(snap.Resources))
		return runErr
	}

	fmt.Printf("\nCreated %d resources.\n", len(snap.Resources))
	if host, ok := snap.Outputs[stack.HostnameOutput]; ok {
		fmt.Printf("HedgeDoc is available at https://%s\n", host)
	}
	return nil
}

// regenerated lists properties that differ between runs for an unchanged
// definition. The self-signed certificate is generated anew by every up.
var regenerated = map[string][]string{
	"AWS::IAM::ServerCertificate": {"CertificateBody", "PrivateKey"},
}

// compareExisting reports whether a deployed stack matches plan.
func compareExisting(existing *state.Snapshot, plan *hedgedoc.Template) error {
	if existing.Plan == nil {
		return fmt.Errorf("stack %s: %w", existing.Stack, errStackExists)
	}
	result, err := differ.Compare(existing.Plan, plan, differ.Options{
		IgnoreOrder:      true,
		IgnoreProperties: regenerated,
	})
	if err != nil {
		return err
	}
	if result.Empty() {
		fmt.Printf("Stack %s is up to date.\n", existing.Stack)
		return nil
	}
	if err := outputDiff(result, "text"); err != nil {
		return err
	}
	return fmt.Errorf("stack %s: %w", existing.Stack, errStackExists)
}

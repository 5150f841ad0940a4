package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lex00/hedgedoc-aws-go/internal/state"
)

// DestroyOptions configures Destroy.
type DestroyOptions struct {
	Logger   *slog.Logger
	Parallel int
}

// Destroy deletes every resource in snap, dependents and children first.
// Nodes of one teardown wave are deleted concurrently. Deleted nodes are
// removed from snap as they go, so on error snap holds exactly what is
// left and can be saved for a retry.
func Destroy(ctx context.Context, provider Provider, snap *state.Snapshot, opts DestroyOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	tracer := otel.Tracer(tracerName)

	waves, err := snap.TeardownWaves()
	if err != nil {
		return err
	}

	var mu sync.Mutex
	for i, wave := range waves {
		logger.Debug("destroying wave", "wave", i, "nodes", len(wave))

		var (
			g    errgroup.Group
			errs []error
		)
		g.SetLimit(parallel)
		for _, urn := range wave {
			mu.Lock()
			res, isResource := snap.Resource(urn)
			mu.Unlock()

			if !isResource {
				mu.Lock()
				snap.Remove(urn)
				mu.Unlock()
				continue
			}

			g.Go(func() error {
				if err := deleteResource(ctx, tracer, provider, res); err != nil {
					logger.Error("delete failed", "urn", urn, "error", err)
					mu.Lock()
					errs = append(errs, fmt.Errorf("deleting %s: %w", urn, err))
					mu.Unlock()
					return nil
				}
				logger.Info("deleted resource", "urn", urn, "id", res.ID)
				mu.Lock()
				snap.Remove(urn)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func deleteResource(ctx context.Context, tracer trace.Tracer, provider Provider, res state.Resource) error {
	ctx, span := tracer.Start(ctx, "delete "+res.Type, trace.WithAttributes(
		attribute.String("hedgedoc.urn", res.URN),
		attribute.String("hedgedoc.type", res.Type),
	))
	defer span.End()

	err := provider.Delete(ctx, DeleteRequest{URN: res.URN, Type: res.Type, ID: res.ID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

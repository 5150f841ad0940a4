// Package engine registers resource descriptors, resolves the deferred
// values between them and creates them through a Provider in dependency
// order.
//
// Registration never blocks. Each registered resource gets a goroutine that
// waits for every output embedded in its properties and then calls the
// provider, so independent resources are created concurrently while
// dependents wait for what they reference.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/serialize"
	"github.com/lex00/hedgedoc-aws-go/output"
)

var (
	// ErrDependencyFailed is reported for resources that were never created
	// because something they depend on failed.
	ErrDependencyFailed = errors.New("engine: dependency failed")

	// ErrDuplicateURN is returned when two registrations collide.
	ErrDuplicateURN = errors.New("engine: duplicate URN")
)

// StackType is the component type of the root of every deployment.
const StackType = "hedgedoc:stack:Stack"

// DefaultParallel bounds concurrent provider calls when Options.Parallel
// is not set.
const DefaultParallel = 10

const tracerName = "github.com/lex00/hedgedoc-aws-go/internal/engine"

// Options configures a Deployment.
type Options struct {
	Stack    string
	Provider Provider
	Logger   *slog.Logger
	// Parallel bounds concurrent provider calls.
	Parallel int
}

// Deployment tracks one run of a stack against a provider.
type Deployment struct {
	ctx      context.Context
	stack    string
	provider Provider
	logger   *slog.Logger
	sem      *semaphore.Weighted
	tracer   trace.Tracer
	wg       sync.WaitGroup

	mu         sync.Mutex
	root       *Component
	components []*Component
	resources  []*Resource
	urns       map[string]bool
	logicalIDs map[string]string
	exports    map[string]export
	errs       []error
}

type export struct {
	description string
	value       output.Input
}

// New starts a deployment. ctx bounds every provider call made on its
// behalf.
func New(ctx context.Context, opts Options) (*Deployment, error) {
	if opts.Stack == "" {
		return nil, errors.New("engine: stack name is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("engine: provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	d := &Deployment{
		ctx:        ctx,
		stack:      opts.Stack,
		provider:   opts.Provider,
		logger:     logger.With("stack", opts.Stack),
		sem:        semaphore.NewWeighted(int64(parallel)),
		tracer:     otel.Tracer(tracerName),
		urns:       make(map[string]bool),
		logicalIDs: make(map[string]string),
		exports:    make(map[string]export),
	}
	d.root = &Component{urn: d.urn(StackType, opts.Stack), typ: StackType, name: opts.Stack}
	d.urns[d.root.urn] = true
	d.components = append(d.components, d.root)
	return d, nil
}

// Run starts a deployment, calls fn to register resources and waits for
// everything fn started. The deployment is returned even on error so that
// partially created resources can be recorded.
func Run(ctx context.Context, opts Options, fn func(d *Deployment) error) (*Deployment, error) {
	d, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}
	fnErr := fn(d)
	waitErr := d.Wait()
	return d, errors.Join(fnErr, waitErr)
}

// Stack returns the stack name.
func (d *Deployment) Stack() string { return d.stack }

// Root returns the stack component.
func (d *Deployment) Root() *Component { return d.root }

// Logger returns the deployment logger.
func (d *Deployment) Logger() *slog.Logger { return d.logger }

func (d *Deployment) urn(typ, name string) string {
	return fmt.Sprintf("urn:hedgedoc:%s::%s::%s", d.stack, typ, name)
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RegisterComponent adds a logical grouping node.
func (d *Deployment) RegisterComponent(typ, name string, opts ...Option) (*Component, error) {
	o := applyOptions(opts)
	parent := o.parent
	if parent == nil {
		parent = d.root
	}
	c := &Component{urn: d.urn(typ, name), typ: typ, name: name, parent: parent}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.urns[c.urn] {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateURN, c.urn)
	}
	d.urns[c.urn] = true
	d.components = append(d.components, c)
	return c, nil
}

// RegisterResource adds a resource and returns immediately. The resource
// is created once every output in props has resolved.
func (d *Deployment) RegisterResource(name string, props hedgedoc.Resource, opts ...Option) (*Resource, error) {
	if props == nil {
		return nil, fmt.Errorf("engine: nil properties for %s", name)
	}
	o := applyOptions(opts)
	parent := o.parent
	if parent == nil {
		parent = d.root
	}

	urn := d.urn(props.ResourceType(), name)
	logicalID := serialize.LogicalID(name)
	inputs := serialize.Inputs(props)

	deps := serialize.Dependencies(props)
	for _, dep := range o.dependsOn {
		deps = append(deps, dep.urn)
	}
	deps = uniqueSorted(deps)

	d.mu.Lock()
	if d.urns[urn] {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateURN, urn)
	}
	if other, ok := d.logicalIDs[logicalID]; ok {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: logical id %s of %s already used by %s", ErrDuplicateURN, logicalID, urn, other)
	}
	r := newResource(urn, name, logicalID, parent, props, deps)
	d.urns[urn] = true
	d.logicalIDs[logicalID] = urn
	d.resources = append(d.resources, r)
	d.mu.Unlock()

	d.logger.Debug("registered resource", "urn", urn, "dependencies", len(deps))

	d.wg.Add(1)
	go d.create(r, inputs, o.dependsOn)
	return r, nil
}

func uniqueSorted(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	sort.Strings(s)
	result := s[:1]
	for _, v := range s[1:] {
		if v != result[len(result)-1] {
			result = append(result, v)
		}
	}
	return result
}

func (d *Deployment) create(r *Resource, inputs []output.Input, after []*Resource) {
	defer d.wg.Done()

	for _, dep := range after {
		if _, err := dep.result.Await(d.ctx); err != nil {
			d.skip(r, err)
			return
		}
	}
	for _, in := range inputs {
		if _, err := in.AwaitAny(d.ctx); err != nil {
			d.skip(r, err)
			return
		}
	}

	props, err := serialize.ResourceWith(r.props, serialize.Options{
		Resolve: func(in output.Input) (any, error) {
			return in.AwaitAny(d.ctx)
		},
	})
	if err != nil {
		d.fail(r, fmt.Errorf("serializing %s: %w", r.urn, err))
		return
	}

	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		d.skip(r, err)
		return
	}
	resp, err := d.callCreate(r, props)
	d.sem.Release(1)
	if err != nil {
		if resp != nil && resp.ID != "" {
			d.logger.Warn("resource left unfinished", "urn", r.urn, "id", resp.ID)
			r.setUnfinished(resp)
		}
		d.fail(r, fmt.Errorf("creating %s: %w", r.urn, err))
		return
	}
	if resp == nil {
		resp = &CreateResponse{}
	}

	d.logger.Info("created resource", "urn", r.urn, "id", resp.ID)
	r.resolve.Resolve(resp)
}

func (d *Deployment) callCreate(r *Resource, props map[string]any) (*CreateResponse, error) {
	ctx, span := d.tracer.Start(d.ctx, "create "+r.typ, trace.WithAttributes(
		attribute.String("hedgedoc.urn", r.urn),
		attribute.String("hedgedoc.type", r.typ),
	))
	defer span.End()

	d.logger.Debug("creating resource", "urn", r.urn, "type", r.typ)
	resp, err := d.provider.Create(ctx, CreateRequest{
		URN:        r.urn,
		Type:       r.typ,
		LogicalID:  r.logicalID,
		Properties: props,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

// fail records err as a root cause and rejects r.
func (d *Deployment) fail(r *Resource, err error) {
	d.logger.Error("resource failed", "urn", r.urn, "error", err)
	d.record(err)
	r.resolve.Reject(fmt.Errorf("%s: %w", r.urn, ErrDependencyFailed))
}

// skip rejects r because something it waits for failed. The cause is only
// recorded when it did not come from another failed resource.
func (d *Deployment) skip(r *Resource, cause error) {
	if !errors.Is(cause, ErrDependencyFailed) && d.ctx.Err() == nil {
		d.record(fmt.Errorf("resolving inputs of %s: %w", r.urn, cause))
	}
	d.logger.Warn("skipping resource", "urn", r.urn, "error", cause)
	r.resolve.Reject(fmt.Errorf("%s: %w", r.urn, ErrDependencyFailed))
}

func (d *Deployment) record(err error) {
	d.mu.Lock()
	d.errs = append(d.errs, err)
	d.mu.Unlock()
}

// After runs fn once every input has resolved, passing their values in
// order. fn may register further resources. It never runs if an input
// fails; Wait waits for it like for any resource.
func (d *Deployment) After(inputs []output.Input, fn func(ctx context.Context, values []any) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		values := make([]any, len(inputs))
		for i, in := range inputs {
			v, err := in.AwaitAny(d.ctx)
			if err != nil {
				if !errors.Is(err, ErrDependencyFailed) && d.ctx.Err() == nil {
					d.record(fmt.Errorf("deferred step: %w", err))
				}
				d.logger.Warn("skipping deferred step", "error", err)
				return
			}
			values[i] = v
		}
		if err := fn(d.ctx, values); err != nil {
			d.record(fmt.Errorf("deferred step: %w", err))
		}
	}()
}

// Export records a named stack output.
func (d *Deployment) Export(name, description string, value output.Input) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exports[name] = export{description: description, value: value}
}

// Wait blocks until every registered resource and deferred step has
// finished and returns the joined root-cause errors. Resources that failed
// only because a dependency failed are not reported separately.
func (d *Deployment) Wait() error {
	d.wg.Wait()

	d.mu.Lock()
	errs := append([]error(nil), d.errs...)
	d.mu.Unlock()

	if len(errs) == 0 {
		return d.ctx.Err()
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

// Resources returns every registered resource sorted by URN.
func (d *Deployment) Resources() []*Resource {
	d.mu.Lock()
	rs := append([]*Resource(nil), d.resources...)
	d.mu.Unlock()
	sort.Slice(rs, func(i, j int) bool { return rs[i].urn < rs[j].urn })
	return rs
}

// Components returns every component, including the root, sorted by URN.
func (d *Deployment) Components() []*Component {
	d.mu.Lock()
	cs := append([]*Component(nil), d.components...)
	d.mu.Unlock()
	sort.Slice(cs, func(i, j int) bool { return cs[i].urn < cs[j].urn })
	return cs
}

// ResourcesOfType returns the registered resources of a CloudFormation
// type, sorted by URN.
func (d *Deployment) ResourcesOfType(typ string) []*Resource {
	var result []*Resource
	for _, r := range d.Resources() {
		if r.typ == typ {
			result = append(result, r)
		}
	}
	return result
}

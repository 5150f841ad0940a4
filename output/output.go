// Package output provides deferred values for resource attributes.
//
// An Output is a write-once future. Resource ids and attributes are only
// known after the provider has created the resource, so composers pass
// Outputs into other descriptors and the engine waits for them before it
// calls the provider:
//
//	subnet := &ec2.Subnet{
//	    VpcId:     vpc.ID(),           // Output[string]
//	    CidrBlock: "10.100.0.0/24",
//	}
//
// Outputs remember the URNs of the resources they were derived from, so
// dependency edges are known at registration time, before anything resolves.
package output

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrUnset is returned when awaiting the zero Output.
var ErrUnset = errors.New("output: value was never set")

// Input is implemented by every Output regardless of its element type.
// The engine and the serializer work against Input so they can handle
// heterogeneous property values.
type Input interface {
	// AwaitAny blocks until the value resolves or ctx is done.
	AwaitAny(ctx context.Context) (any, error)
	// Dependencies returns the URNs this value was derived from.
	Dependencies() []string
	// IsSecret reports whether the value must be redacted in plans and logs.
	IsSecret() bool
}

type state struct {
	done   chan struct{}
	once   sync.Once
	value  any
	err    error
	secret bool
	deps   []string
}

func newState(deps []string, secret bool) *state {
	return &state{
		done:   make(chan struct{}),
		deps:   normalizeDeps(deps),
		secret: secret,
	}
}

func (s *state) settle(v any, err error) {
	s.once.Do(func() {
		s.value = v
		s.err = err
		close(s.done)
	})
}

// Output is a deferred value of type T.
type Output[T any] struct {
	st  *state
	ref any
}

// Referencer is implemented by outputs that carry a symbolic template
// reference, such as an intrinsics.GetAtt for a resource attribute.
type Referencer interface {
	Reference() any
}

// Resolver settles the Output it was created with. Only the first call
// to Resolve or Reject has any effect.
type Resolver[T any] struct {
	st *state
}

// Resolve settles the output with v.
func (r Resolver[T]) Resolve(v T) {
	r.st.settle(v, nil)
}

// Reject settles the output with err.
func (r Resolver[T]) Reject(err error) {
	if err == nil {
		err = errors.New("output: rejected with nil error")
	}
	r.st.settle(nil, err)
}

// New returns an unresolved Output and its Resolver. deps are the URNs of
// the resources the value belongs to.
func New[T any](deps ...string) (Output[T], Resolver[T]) {
	st := newState(deps, false)
	return Output[T]{st: st}, Resolver[T]{st: st}
}

// Val returns an already resolved Output with no dependencies.
func Val[T any](v T) Output[T] {
	st := newState(nil, false)
	st.settle(v, nil)
	return Output[T]{st: st}
}

// Secret returns o marked as secret.
func Secret[T any](o Output[T]) Output[T] {
	if o.st == nil {
		return o
	}
	st := newState(o.st.deps, true)
	go func() {
		<-o.st.done
		st.settle(o.st.value, o.st.err)
	}()
	return Output[T]{st: st, ref: o.ref}
}

// SecretVal returns an already resolved secret Output.
func SecretVal[T any](v T) Output[T] {
	st := newState(nil, true)
	st.settle(v, nil)
	return Output[T]{st: st}
}

// WithReference returns o annotated with ref. Plans render the reference
// in place of the resolved value. Derived outputs (Apply, All, Sprintf)
// do not inherit it.
func WithReference[T any](o Output[T], ref any) Output[T] {
	o.ref = ref
	return o
}

// Reference implements Referencer. It is nil unless set by WithReference.
func (o Output[T]) Reference() any {
	return o.ref
}

// IsZero reports whether o was never initialised.
func (o Output[T]) IsZero() bool {
	return o.st == nil
}

// Await blocks until o resolves or ctx is done.
func (o Output[T]) Await(ctx context.Context) (T, error) {
	var zero T
	v, err := o.AwaitAny(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("output: resolved %T, want %T", v, zero)
	}
	return typed, nil
}

// AwaitAny implements Input.
func (o Output[T]) AwaitAny(ctx context.Context) (any, error) {
	if o.st == nil {
		return nil, ErrUnset
	}
	select {
	case <-o.st.done:
		return o.st.value, o.st.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolved reports whether o has settled, successfully or not.
func (o Output[T]) Resolved() bool {
	if o.st == nil {
		return false
	}
	select {
	case <-o.st.done:
		return true
	default:
		return false
	}
}

// Dependencies implements Input.
func (o Output[T]) Dependencies() []string {
	if o.st == nil {
		return nil
	}
	return append([]string(nil), o.st.deps...)
}

// IsSecret implements Input.
func (o Output[T]) IsSecret() bool {
	return o.st != nil && o.st.secret
}

// String keeps unresolved and secret values out of accidental fmt output.
func (o Output[T]) String() string {
	switch {
	case o.st == nil:
		return "Output(<unset>)"
	case o.st.secret:
		return "Output([secret])"
	case !o.Resolved():
		return "Output(<pending>)"
	case o.st.err != nil:
		return "Output(<error>)"
	default:
		return fmt.Sprintf("Output(%v)", o.st.value)
	}
}

// Apply returns an Output holding fn applied to the resolved value of o.
// fn never runs if o is rejected.
func Apply[T, U any](o Output[T], fn func(T) (U, error)) Output[U] {
	if o.st == nil {
		out, r := New[U]()
		r.Reject(ErrUnset)
		return out
	}
	st := newState(o.st.deps, o.st.secret)
	go func() {
		v, err := o.Await(context.Background())
		if err != nil {
			st.settle(nil, err)
			return
		}
		u, err := fn(v)
		if err != nil {
			st.settle(nil, err)
			return
		}
		st.settle(u, nil)
	}()
	return Output[U]{st: st}
}

// All returns an Output that resolves to the values of inputs, in order,
// once every input has resolved. Inputs are awaited concurrently and any
// rejected input rejects the result as soon as it settles, even while
// earlier inputs are still pending. The result is secret if any input is
// secret.
func All(inputs ...Input) Output[[]any] {
	var deps []string
	secret := false
	for _, in := range inputs {
		deps = append(deps, in.Dependencies()...)
		secret = secret || in.IsSecret()
	}
	st := newState(deps, secret)
	go func() {
		values := make([]any, len(inputs))
		g, ctx := errgroup.WithContext(context.Background())
		for i, in := range inputs {
			g.Go(func() error {
				v, err := in.AwaitAny(ctx)
				if err != nil {
					return err
				}
				values[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			st.settle(nil, err)
			return
		}
		st.settle(values, nil)
	}()
	return Output[[]any]{st: st}
}

// Sprintf formats args once every Input among them has resolved. Plain
// values are used as-is.
func Sprintf(format string, args ...any) Output[string] {
	var inputs []Input
	var positions []int
	for i, a := range args {
		if in, ok := a.(Input); ok {
			inputs = append(inputs, in)
			positions = append(positions, i)
		}
	}
	return Apply(All(inputs...), func(values []any) (string, error) {
		resolved := append([]any(nil), args...)
		for j, pos := range positions {
			resolved[pos] = values[j]
		}
		return fmt.Sprintf(format, resolved...), nil
	})
}

// DependenciesOf returns the union of the dependencies of inputs.
func DependenciesOf(inputs ...Input) []string {
	var deps []string
	for _, in := range inputs {
		deps = append(deps, in.Dependencies()...)
	}
	return normalizeDeps(deps)
}

func normalizeDeps(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(deps))
	result := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		result = append(result, d)
	}
	sort.Strings(result)
	return result
}

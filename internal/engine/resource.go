package engine

import (
	"context"
	"fmt"
	"sync"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/output"
)

// Component groups resources under a logical parent. It has no provider
// counterpart.
type Component struct {
	urn    string
	typ    string
	name   string
	parent *Component
}

// URN returns the component's unique resource name.
func (c *Component) URN() string { return c.urn }

// Type returns the component type, e.g. "hedgedoc:network:Network".
func (c *Component) Type() string { return c.typ }

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Parent returns the parent component, or nil for the stack root.
func (c *Component) Parent() *Component { return c.parent }

// Resource is a registered provider resource. Its id and attributes are
// outputs that resolve once the provider has created it.
type Resource struct {
	urn       string
	name      string
	typ       string
	logicalID string
	parent    *Component
	props     hedgedoc.Resource
	deps      []string

	result  output.Output[*CreateResponse]
	resolve output.Resolver[*CreateResponse]
	id      output.Output[string]

	mu          sync.Mutex
	attrs       map[string]output.Output[string]
	secretAttrs map[string]bool
	unfinished  *CreateResponse
}

func newResource(urn, name, logicalID string, parent *Component, props hedgedoc.Resource, deps []string) *Resource {
	result, resolve := output.New[*CreateResponse](urn)
	r := &Resource{
		urn:         urn,
		name:        name,
		typ:         props.ResourceType(),
		logicalID:   logicalID,
		parent:      parent,
		props:       props,
		deps:        deps,
		result:      result,
		resolve:     resolve,
		attrs:       make(map[string]output.Output[string]),
		secretAttrs: make(map[string]bool),
	}
	r.id = output.WithReference(
		output.Apply(result, func(resp *CreateResponse) (string, error) {
			return resp.ID, nil
		}),
		intrinsics.Ref{LogicalName: logicalID},
	)
	return r
}

// URN returns the resource's unique resource name.
func (r *Resource) URN() string { return r.urn }

// Name returns the name the resource was registered with.
func (r *Resource) Name() string { return r.name }

// Type returns the CloudFormation type.
func (r *Resource) Type() string { return r.typ }

// LogicalID returns the template logical id.
func (r *Resource) LogicalID() string { return r.logicalID }

// Parent returns the owning component.
func (r *Resource) Parent() *Component { return r.parent }

// Properties returns the descriptor the resource was registered with.
func (r *Resource) Properties() hedgedoc.Resource { return r.props }

// Dependencies returns the URNs the resource waits for.
func (r *Resource) Dependencies() []string {
	return append([]string(nil), r.deps...)
}

// ID returns the physical id assigned by the provider.
func (r *Resource) ID() output.Output[string] {
	return r.id
}

// Attr returns a provider-reported attribute such as "Endpoint.Address".
// The output is rejected if the provider did not report it.
func (r *Resource) Attr(name string) output.Output[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.attrs[name]; ok {
		return o
	}
	o := output.WithReference(
		output.Apply(r.result, func(resp *CreateResponse) (string, error) {
			v, ok := resp.Attributes[name]
			if !ok {
				return "", fmt.Errorf("%s: provider reported no attribute %q", r.urn, name)
			}
			return v, nil
		}),
		intrinsics.GetAtt{LogicalName: r.logicalID, Attribute: name},
	)
	r.attrs[name] = o
	return o
}

// SecretAttr is Attr marked secret. The attribute is left out of saved
// state.
func (r *Resource) SecretAttr(name string) output.Output[string] {
	o := r.Attr(name)
	r.mu.Lock()
	r.secretAttrs[name] = true
	r.mu.Unlock()
	return output.Secret(o)
}

// setUnfinished records a resource the provider started but did not see
// through, so that it still ends up in state.
func (r *Resource) setUnfinished(resp *CreateResponse) {
	r.mu.Lock()
	r.unfinished = resp
	r.mu.Unlock()
}

// created returns the provider response, or nil if the resource was not
// created. A failed resource the provider reported an id for counts as
// created.
func (r *Resource) created() *CreateResponse {
	if !r.result.Resolved() {
		return nil
	}
	resp, err := r.result.Await(context.Background())
	if err != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.unfinished
	}
	return resp
}

func (r *Resource) isSecretAttr(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.secretAttrs[name]
}

// Option configures a registration.
type Option func(*options)

type options struct {
	parent    *Component
	dependsOn []*Resource
}

// Parent sets the owning component. The stack root is used otherwise.
func Parent(c *Component) Option {
	return func(o *options) {
		o.parent = c
	}
}

// DependsOn adds explicit dependencies that are not expressed through
// property values.
func DependsOn(rs ...*Resource) Option {
	return func(o *options) {
		o.dependsOn = append(o.dependsOn, rs...)
	}
}

// Package dispatch routes resources to providers by CloudFormation type.
package dispatch

import (
	"context"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

// Provider sends each request to the provider registered for its type and
// everything else to a fallback.
type Provider struct {
	fallback engine.Provider
	routes   map[string]engine.Provider
}

// New returns a provider that uses routes[type] when present and fallback
// otherwise.
func New(fallback engine.Provider, routes map[string]engine.Provider) *Provider {
	r := make(map[string]engine.Provider, len(routes))
	for typ, p := range routes {
		r[typ] = p
	}
	return &Provider{fallback: fallback, routes: r}
}

// For returns the provider that handles typ.
func (p *Provider) For(typ string) engine.Provider {
	if routed, ok := p.routes[typ]; ok {
		return routed
	}
	return p.fallback
}

// Create implements engine.Provider.
func (p *Provider) Create(ctx context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	return p.For(req.Type).Create(ctx, req)
}

// Delete implements engine.Provider.
func (p *Provider) Delete(ctx context.Context, req engine.DeleteRequest) error {
	return p.For(req.Type).Delete(ctx, req)
}

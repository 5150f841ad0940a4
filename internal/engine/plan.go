package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/serialize"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
	"github.com/lex00/hedgedoc-aws-go/internal/template"
	"github.com/lex00/hedgedoc-aws-go/output"
)

// planOptions renders references symbolically and redacts secrets.
func planOptions(ctx context.Context) serialize.Options {
	return serialize.Options{
		Redact: true,
		Resolve: func(in output.Input) (any, error) {
			if ref, ok := in.(output.Referencer); ok && ref.Reference() != nil {
				return ref.Reference(), nil
			}
			return in.AwaitAny(ctx)
		},
	}
}

// Template renders the created resources as a CloudFormation template.
// Call it after Wait.
func (d *Deployment) Template(ctx context.Context, description string) (*hedgedoc.Template, error) {
	resources := d.Resources()
	logicalIDs := make(map[string]string, len(resources))
	for _, r := range resources {
		logicalIDs[r.urn] = r.logicalID
	}

	opts := planOptions(ctx)
	b := template.NewBuilder(description)
	for _, r := range resources {
		if r.created() == nil {
			continue
		}
		props, err := serialize.ResourceWith(r.props, opts)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", r.urn, err)
		}
		var deps []string
		for _, urn := range r.deps {
			if id, ok := logicalIDs[urn]; ok {
				deps = append(deps, id)
			}
		}
		if err := b.Add(template.Node{
			LogicalID:    r.logicalID,
			Type:         r.typ,
			Properties:   props,
			Dependencies: deps,
			Parent:       r.parent.name,
		}); err != nil {
			return nil, err
		}
	}

	for _, name := range d.exportNames() {
		e := d.exportByName(name)
		value, err := serialize.Value(e.value, opts)
		if err != nil {
			continue
		}
		b.SetOutput(name, hedgedoc.Output{Description: e.description, Value: value})
	}

	return b.Build()
}

func (d *Deployment) exportNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.exports))
	for name := range d.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Deployment) exportByName(name string) export {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exports[name]
}

// ExportValue returns the resolved value of a stack output. Secret outputs
// are redacted.
func (d *Deployment) ExportValue(ctx context.Context, name string) (string, error) {
	d.mu.Lock()
	e, ok := d.exports[name]
	d.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("engine: no output named %s", name)
	}
	if e.value.IsSecret() {
		return serialize.RedactedValue, nil
	}
	v, err := e.value.AwaitAny(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// Snapshot records the created resources and components. Call it after
// Wait.
func (d *Deployment) Snapshot(ctx context.Context) *state.Snapshot {
	snap := state.New(d.stack)
	snap.UpdatedAt = time.Now().UTC()

	for _, c := range d.Components() {
		sc := state.Component{URN: c.urn, Type: c.typ, Name: c.name}
		if c.parent != nil {
			sc.Parent = c.parent.urn
		}
		snap.Components = append(snap.Components, sc)
	}

	for _, r := range d.Resources() {
		resp := r.created()
		if resp == nil {
			continue
		}
		sr := state.Resource{
			URN:          r.urn,
			Type:         r.typ,
			Name:         r.name,
			LogicalID:    r.logicalID,
			ID:           resp.ID,
			Parent:       r.parent.urn,
			Dependencies: r.Dependencies(),
		}
		for k, v := range resp.Attributes {
			if r.isSecretAttr(k) {
				continue
			}
			if sr.Outputs == nil {
				sr.Outputs = make(map[string]string)
			}
			sr.Outputs[k] = v
		}
		snap.Resources = append(snap.Resources, sr)
	}

	for _, name := range d.exportNames() {
		v, err := d.ExportValue(ctx, name)
		if err != nil {
			continue
		}
		if snap.Outputs == nil {
			snap.Outputs = make(map[string]string)
		}
		snap.Outputs[name] = v
	}

	snap.Sort()
	return snap
}

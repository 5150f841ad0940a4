// Package template renders a deployment plan as a CloudFormation template.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// Node is one resource of the plan.
type Node struct {
	LogicalID  string
	Type       string
	Properties map[string]any
	// Dependencies are the logical ids this resource must follow.
	Dependencies []string
	// Parent is the name of the component that owns the resource.
	Parent string
}

// Builder constructs CloudFormation templates from plan nodes.
type Builder struct {
	description string
	nodes       map[string]Node
	outputs     map[string]hedgedoc.Output
}

// NewBuilder creates an empty template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		nodes:       make(map[string]Node),
		outputs:     make(map[string]hedgedoc.Output),
	}
}

// Add records a resource. Logical ids must be unique.
func (b *Builder) Add(n Node) error {
	if n.LogicalID == "" {
		return errors.New("template: empty logical id")
	}
	if _, exists := b.nodes[n.LogicalID]; exists {
		return fmt.Errorf("template: duplicate logical id %s", n.LogicalID)
	}
	b.nodes[n.LogicalID] = n
	return nil
}

// SetOutput records a stack output.
func (b *Builder) SetOutput(name string, out hedgedoc.Output) {
	b.outputs[name] = out
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*hedgedoc.Template, error) {
	// Fail on cycles even though the map itself is unordered
	if _, err := b.Order(); err != nil {
		return nil, err
	}

	template := &hedgedoc.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.description,
		Resources:                make(map[string]hedgedoc.ResourceDef, len(b.nodes)),
	}

	for name, n := range b.nodes {
		def := hedgedoc.ResourceDef{
			Type:       n.Type,
			Properties: n.Properties,
			DependsOn:  b.explicitDependsOn(n),
		}
		if n.Parent != "" {
			def.Metadata = map[string]any{"Parent": n.Parent}
		}
		template.Resources[name] = def
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]hedgedoc.Output, len(b.outputs))
		for name, out := range b.outputs {
			template.Outputs[name] = out
		}
	}

	return template, nil
}

// explicitDependsOn returns the dependencies that are not already implied
// by a Ref or Fn::GetAtt inside the resource properties.
func (b *Builder) explicitDependsOn(n Node) []string {
	implied := make(map[string]bool)
	collectRefs(n.Properties, implied)

	var deps []string
	for _, dep := range n.Dependencies {
		if dep == n.LogicalID || implied[dep] {
			continue
		}
		if _, exists := b.nodes[dep]; !exists {
			continue
		}
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return dedupe(deps)
}

func collectRefs(value any, refs map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		if ref, ok := v["Ref"].(string); ok {
			refs[ref] = true
		}
		switch att := v["Fn::GetAtt"].(type) {
		case []any:
			if len(att) > 0 {
				if name, ok := att[0].(string); ok {
					refs[name] = true
				}
			}
		case []string:
			if len(att) > 0 {
				refs[att[0]] = true
			}
		case string:
			refs[strings.SplitN(att, ".", 2)[0]] = true
		}
		for _, val := range v {
			collectRefs(val, refs)
		}
	case []any:
		for _, elem := range v {
			collectRefs(elem, refs)
		}
	}
}

func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	result := sorted[:1]
	for _, s := range sorted[1:] {
		if s != result[len(result)-1] {
			result = append(result, s)
		}
	}
	return result
}

// Order returns logical ids in dependency order.
func (b *Builder) Order() ([]string, error) {
	// Build adjacency list
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.nodes {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, n := range b.nodes {
		for _, dep := range dedupe(sortedCopy(n.Dependencies)) {
			if _, exists := b.nodes[dep]; exists && dep != name {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // Deterministic order

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue) // Keep sorted for determinism
			}
		}
	}

	if len(result) != len(b.nodes) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// Order returns the logical ids of a rendered template in dependency
// order. Both DependsOn and references inside the properties count.
func Order(t *hedgedoc.Template) ([]string, error) {
	b := NewBuilder(t.Description)
	for id, def := range t.Resources {
		refs := make(map[string]bool)
		collectRefs(def.Properties, refs)
		deps := append([]string(nil), def.DependsOn...)
		for ref := range refs {
			deps = append(deps, ref)
		}
		if err := b.Add(Node{LogicalID: id, Type: def.Type, Properties: def.Properties, Dependencies: deps}); err != nil {
			return nil, err
		}
	}
	return b.Order()
}

func sortedCopy(s []string) []string {
	c := append([]string(nil), s...)
	sort.Strings(c)
	return c
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	names := make([]string, 0, len(b.nodes))
	for name := range b.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range sortedCopy(b.nodes[node].Dependencies) {
			if _, exists := b.nodes[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " → "))
	}
	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *hedgedoc.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *hedgedoc.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// Parse reads a template in JSON or YAML form.
func Parse(data []byte) (*hedgedoc.Template, error) {
	var t hedgedoc.Template
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing JSON template: %w", err)
		}
		return &t, nil
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing YAML template: %w", err)
	}
	return &t, nil
}

// Package graph generates DOT and Mermaid dependency graphs from a
// rendered plan.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from plans.
//
// Edges point from a resource to what it depends on. Ref edges are
// black, Fn::GetAtt edges blue, and DependsOn-only edges dashed.
type Generator struct {
	// IncludeOutputs adds a node per stack output.
	IncludeOutputs bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByComponent groups resources by the component that owns them.
	ClusterByComponent bool

	// ClusterByType groups resources by AWS service. Ignored when
	// ClusterByComponent is set.
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(t *hedgedoc.Template, w io.Writer) error {
	graph := g.buildGraph(t)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *hedgedoc.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type edgeKind int

const (
	edgeRef edgeKind = iota
	edgeGetAtt
	edgeDependsOn
)

func (g *Generator) buildGraph(t *hedgedoc.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := sortedResourceNames(t)
	var nodes map[string]dot.Node
	switch {
	case g.ClusterByComponent:
		nodes = addClusteredNodes(graph, t, names, func(def hedgedoc.ResourceDef) string {
			p, _ := def.Metadata["Parent"].(string)
			return p
		})
	case g.ClusterByType:
		nodes = addClusteredNodes(graph, t, names, func(def hedgedoc.ResourceDef) string {
			return extractService(def.Type)
		})
	default:
		nodes = make(map[string]dot.Node, len(names))
		for _, name := range names {
			nodes[name] = addNode(graph, name, t.Resources[name].Type)
		}
	}

	for _, name := range names {
		def := t.Resources[name]
		edges := resourceEdges(def)
		for _, dep := range sortedKeys(edges) {
			to, ok := nodes[dep]
			if !ok {
				continue
			}
			e := graph.Edge(nodes[name], to)
			switch edges[dep] {
			case edgeGetAtt:
				e.Attr("color", "blue")
			case edgeDependsOn:
				e.Attr("style", "dashed")
			}
		}
	}

	if g.IncludeOutputs {
		outputs := make([]string, 0, len(t.Outputs))
		for name := range t.Outputs {
			outputs = append(outputs, name)
		}
		sort.Strings(outputs)
		for _, name := range outputs {
			n := graph.Node("output_" + name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
			refs := make(map[string]edgeKind)
			collectRefs(t.Outputs[name].Value, refs)
			for _, dep := range sortedKeys(refs) {
				if to, ok := nodes[dep]; ok {
					graph.Edge(n, to)
				}
			}
		}
	}

	return graph
}

func addNode(g *dot.Graph, name, cfType string) dot.Node {
	n := g.Node(name)
	n.Label(name + "\\n[" + cfType + "]")
	return n
}

// addClusteredNodes groups resources by key. Groups of one resource and
// resources without a key stay at the top level.
func addClusteredNodes(graph *dot.Graph, t *hedgedoc.Template, names []string, key func(hedgedoc.ResourceDef) string) map[string]dot.Node {
	groups := make(map[string][]string)
	var groupNames []string
	for _, name := range names {
		k := key(t.Resources[name])
		if _, seen := groups[k]; !seen {
			groupNames = append(groupNames, k)
		}
		groups[k] = append(groups[k], name)
	}
	sort.Strings(groupNames)

	nodes := make(map[string]dot.Node, len(names))
	for _, group := range groupNames {
		members := groups[group]
		target := graph
		if group != "" && len(members) > 1 {
			target = graph.Subgraph("cluster_"+clusterID(group), dot.ClusterOption{})
			target.Attr("label", group)
			target.Attr("style", "rounded")
			target.Attr("bgcolor", "lightyellow")
		}
		for _, name := range members {
			nodes[name] = addNode(target, name, t.Resources[name].Type)
		}
	}
	return nodes
}

// resourceEdges returns the logical ids def depends on. A reference in
// the properties takes precedence over a DependsOn entry.
func resourceEdges(def hedgedoc.ResourceDef) map[string]edgeKind {
	edges := make(map[string]edgeKind)
	collectRefs(def.Properties, edges)
	for _, dep := range def.DependsOn {
		if _, ok := edges[dep]; !ok {
			edges[dep] = edgeDependsOn
		}
	}
	return edges
}

func collectRefs(v any, refs map[string]edgeKind) {
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["Ref"].(string); ok && len(val) == 1 {
			if _, seen := refs[ref]; !seen {
				refs[ref] = edgeRef
			}
			return
		}
		if args, ok := val["Fn::GetAtt"].([]any); ok && len(val) == 1 && len(args) > 0 {
			if name, ok := args[0].(string); ok {
				refs[name] = edgeGetAtt
			}
			return
		}
		for _, elem := range val {
			collectRefs(elem, refs)
		}
	case []any:
		for _, elem := range val {
			collectRefs(elem, refs)
		}
	}
}

func sortedResourceNames(t *hedgedoc.Template) []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]edgeKind) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clusterID(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, name)
}

// extractService extracts the AWS service name from a CloudFormation type.
// e.g., "AWS::S3::Bucket" -> "S3"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}

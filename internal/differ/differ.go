// Package differ provides semantic comparison of rendered plans.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/template"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool

	// IgnoreProperties lists top-level properties, keyed by resource type,
	// whose changes are not reported. Values that are regenerated on every
	// run go here.
	IgnoreProperties map[string][]string
}

// Result contains the difference between two templates.
type Result struct {
	Diff    hedgedoc.TemplateDiff
	Summary hedgedoc.DiffSummary
	// Outputs lists the names of stack outputs that were added, removed or
	// changed.
	Outputs []string
}

// Compare compares two plans and returns differences. Values are compared
// by their JSON form, so a plan read back from disk equals the plan it was
// written from.
func Compare(template1, template2 *hedgedoc.Template, opts Options) (*Result, error) {
	if template1 == nil || template2 == nil {
		return nil, fmt.Errorf("differ: nil template")
	}
	result := &Result{}

	res1 := template1.Resources
	res2 := template2.Resources

	// Find added resources (in template2 but not in template1)
	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, hedgedoc.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	// Find removed resources (in template1 but not in template2)
	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, hedgedoc.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, hedgedoc.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Outputs = compareOutputs(template1.Outputs, template2.Outputs, opts)

	result.Summary = hedgedoc.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// Empty reports whether the templates are equivalent.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0 && len(r.Outputs) == 0
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a JSON or YAML plan from a file.
func LoadTemplate(path string) (*hedgedoc.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.Parse(data)
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 hedgedoc.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	props1 := withoutIgnored(def1.Properties, opts.IgnoreProperties[def1.Type])
	props2 := withoutIgnored(def2.Properties, opts.IgnoreProperties[def2.Type])
	changes = append(changes, compareProperties("", props1, props2, opts)...)

	if !equalStringSlices(def1.DependsOn, def2.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}
	if parent(def1) != parent(def2) {
		changes = append(changes, fmt.Sprintf("Parent changed: %s → %s", parent(def1), parent(def2)))
	}

	return changes
}

// withoutIgnored returns props minus the named keys.
func withoutIgnored(props map[string]any, ignored []string) map[string]any {
	if len(ignored) == 0 {
		return props
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	for _, k := range ignored {
		delete(out, k)
	}
	return out
}

func parent(def hedgedoc.ResourceDef) string {
	p, _ := def.Metadata["Parent"].(string)
	return p
}

// compareProperties compares property maps one level deep.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if val1, exists := props1[key]; exists {
			if !deepEqual(val1, val2, opts) {
				changes = append(changes, fmt.Sprintf("%s modified", path))
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

func compareOutputs(o1, o2 map[string]hedgedoc.Output, opts Options) []string {
	var names []string
	for name, out2 := range o2 {
		out1, ok := o1[name]
		if !ok || !deepEqual(out1.Value, out2.Value, opts) {
			names = append(names, name)
		}
	}
	for name := range o1 {
		if _, ok := o2[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// deepEqual compares two values by their JSON form, optionally ignoring
// array order.
func deepEqual(a, b any, opts Options) bool {
	return reflect.DeepEqual(canonical(a, opts), canonical(b, opts))
}

// canonical round-trips v through JSON so that numbers and nested maps
// have one representation.
func canonical(v any, opts Options) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	if opts.IgnoreOrder {
		out = sortArrays(out)
	}
	return out
}

func sortArrays(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		keys := make([]string, len(val))
		for i, elem := range val {
			result[i] = sortArrays(elem)
		}
		for i, elem := range result {
			data, _ := json.Marshal(elem)
			keys[i] = string(data)
		}
		sort.Sort(byKey{result, keys})
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, elem := range val {
			result[k] = sortArrays(elem)
		}
		return result
	default:
		return v
	}
}

type byKey struct {
	values []any
	keys   []string
}

func (b byKey) Len() int           { return len(b.values) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.values[i], b.values[j] = b.values[j], b.values[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// equalStringSlices compares two string slices for equality.
func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []hedgedoc.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}

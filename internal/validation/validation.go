// Package validation checks a rendered deployment plan.
//
// Three passes run over a plan:
//   - reference checks: every Ref, Fn::GetAtt and DependsOn target exists
//   - schema checks: required properties, property types and enum values
//   - cfn-lint-go: CloudFormation schema and best-practice rules
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/schema"
	"github.com/lex00/hedgedoc-aws-go/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Result contains all validation results for a plan.
type Result struct {
	// References lists dangling Ref, Fn::GetAtt and DependsOn targets.
	References    []string       `json:"references,omitempty"`
	Schema        *schema.Result `json:"schema,omitempty"`
	CfnLintResult *CfnLintResult `json:"cfn_lint_result"`
	Resources     int            `json:"resources"`
}

// Passed reports whether the plan has no reference problems, no schema
// errors and no cfn-lint errors. Warnings are acceptable.
func (r *Result) Passed() bool {
	if len(r.References) > 0 {
		return false
	}
	if r.Schema != nil && !r.Schema.Valid {
		return false
	}
	return r.CfnLintResult == nil || r.CfnLintResult.Passed
}

// Contract converts the result to the command output contract.
func (r *Result) Contract() hedgedoc.ValidateResult {
	out := hedgedoc.ValidateResult{
		Success:   r.Passed(),
		Resources: r.Resources,
	}
	out.Errors = append(out.Errors, r.References...)
	if r.Schema != nil {
		for _, e := range r.Schema.Errors {
			out.Errors = append(out.Errors, e.String())
		}
		for _, w := range r.Schema.Warnings {
			out.Warnings = append(out.Warnings, w.String())
		}
	}
	if r.CfnLintResult != nil {
		out.Errors = append(out.Errors, r.CfnLintResult.Errors...)
		out.Warnings = append(out.Warnings, r.CfnLintResult.Warnings...)
		out.Warnings = append(out.Warnings, r.CfnLintResult.Informational...)
	}
	return out
}

// ValidateTemplate runs the reference, schema and cfn-lint checks over t. The
// template is written to a temporary YAML file for the linter.
func ValidateTemplate(t *hedgedoc.Template) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("validation: nil template")
	}
	result := &Result{
		References: CheckReferences(t),
		Schema:     schema.ValidateTemplate(t, schema.Options{}),
		Resources:  len(t.Resources),
	}

	data, err := template.ToYAML(t)
	if err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	dir, err := os.MkdirTemp("", "hedgedoc-validate-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	cfn, err := RunCfnLint(path)
	if err != nil {
		return nil, err
	}
	result.CfnLintResult = cfn
	return result, nil
}

// CheckReferences returns one message per reference whose target is not a
// resource of t. Pseudo parameters (AWS::Region, ...) are ignored.
func CheckReferences(t *hedgedoc.Template) []string {
	var problems []string

	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	missing := func(target string) bool {
		if strings.HasPrefix(target, "AWS::") {
			return false
		}
		_, ok := t.Resources[target]
		return !ok
	}

	for _, id := range ids {
		def := t.Resources[id]
		for _, dep := range def.DependsOn {
			if missing(dep) {
				problems = append(problems, fmt.Sprintf("%s: DependsOn unknown resource %s", id, dep))
			}
		}
		for _, ref := range collectTargets(def.Properties) {
			if missing(ref.target) {
				problems = append(problems, fmt.Sprintf("%s: %s to unknown resource %s", id, ref.kind, ref.target))
			}
		}
	}

	names := make([]string, 0, len(t.Outputs))
	for name := range t.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, ref := range collectTargets(t.Outputs[name].Value) {
			if missing(ref.target) {
				problems = append(problems, fmt.Sprintf("output %s: %s to unknown resource %s", name, ref.kind, ref.target))
			}
		}
	}
	return problems
}

type target struct {
	kind   string
	target string
}

func collectTargets(value any) []target {
	var out []target
	var walk func(v any)
	walk = func(v any) {
		switch v := v.(type) {
		case map[string]any:
			if ref, ok := v["Ref"].(string); ok && len(v) == 1 {
				out = append(out, target{kind: "Ref", target: ref})
				return
			}
			if getAtt, ok := v["Fn::GetAtt"]; ok && len(v) == 1 {
				if id := getAttTarget(getAtt); id != "" {
					out = append(out, target{kind: "Fn::GetAtt", target: id})
				}
				return
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(v[k])
			}
		case []any:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(value)
	return out
}

// getAttTarget accepts both the list form and the "Id.Attr" string form.
func getAttTarget(v any) string {
	switch v := v.(type) {
	case []any:
		if len(v) > 0 {
			id, _ := v[0].(string)
			return id
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case string:
		id, _, _ := strings.Cut(v, ".")
		return id
	}
	return ""
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	result.Passed = len(result.Errors) == 0
	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	if len(match.Location.Path) == 0 {
		return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
	}
	parts := make([]string, len(match.Location.Path))
	for i, p := range match.Location.Path {
		parts[i] = fmt.Sprintf("%v", p)
	}
	return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, strings.Join(parts, "/"))
}

package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/schema"
)

func TestCfnLintResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   CfnLintResult
		expected int
	}{
		{
			name:     "no issues",
			result:   CfnLintResult{},
			expected: 0,
		},
		{
			name: "errors only",
			result: CfnLintResult{
				Errors: []string{"E1", "E2"},
			},
			expected: 2,
		},
		{
			name: "mixed issues",
			result: CfnLintResult{
				Errors:        []string{"E1"},
				Warnings:      []string{"W1", "W2"},
				Informational: []string{"I1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E1234"},
				Message: "Something is wrong",
			},
			expected: "E1234: Something is wrong",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W5678"},
				Message: "Warning message",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "Hedgedoc1Bucket", "Properties"},
				},
			},
			expected: "W5678: Warning message (at Resources/Hedgedoc1Bucket/Properties)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestRunCfnLint_FileNotFound(t *testing.T) {
	result, err := RunCfnLint("/nonexistent/template.yaml")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Template file not found")
}

func TestRunCfnLint_ValidTemplate(t *testing.T) {
	templatePath := filepath.Join(t.TempDir(), "template.yaml")
	validTemplate := `AWSTemplateFormatVersion: '2010-09-09'
Description: Test template
Resources:
  Hedgedoc1Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: hedgedoc1-bucket
`
	require.NoError(t, os.WriteFile(templatePath, []byte(validTemplate), 0o644))

	result, err := RunCfnLint(templatePath)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func sampleTemplate() *hedgedoc.Template {
	return &hedgedoc.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]hedgedoc.ResourceDef{
			"Hedgedoc1Bucket": {Type: "AWS::S3::Bucket"},
			"Hedgedoc1BucketPolicy": {
				Type: "AWS::S3::BucketPolicy",
				Properties: map[string]any{
					"Bucket": map[string]any{"Ref": "Hedgedoc1Bucket"},
					"PolicyDocument": map[string]any{
						"Statement": []any{
							map[string]any{
								"Resource": map[string]any{"Fn::GetAtt": []any{"Hedgedoc1Bucket", "Arn"}},
							},
						},
					},
				},
				DependsOn: []string{"Hedgedoc1Bucket"},
			},
		},
		Outputs: map[string]hedgedoc.Output{
			"Bucket": {Value: map[string]any{"Ref": "Hedgedoc1Bucket"}},
		},
	}
}

func TestCheckReferences_Valid(t *testing.T) {
	assert.Empty(t, CheckReferences(sampleTemplate()))
}

func TestCheckReferences_PseudoParameters(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Resources["Hedgedoc1Logs"] = hedgedoc.ResourceDef{
		Type:       "AWS::Logs::LogGroup",
		Properties: map[string]any{"LogGroupName": map[string]any{"Ref": "AWS::StackName"}},
	}
	assert.Empty(t, CheckReferences(tmpl))
}

func TestCheckReferences_Dangling(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Resources["Hedgedoc1User"] = hedgedoc.ResourceDef{
		Type: "AWS::IAM::User",
		Properties: map[string]any{
			"Policies": []any{map[string]any{"Ref": "Missing"}},
			"Path":     map[string]any{"Fn::GetAtt": "Gone.Arn"},
		},
		DependsOn: []string{"Absent"},
	}
	tmpl.Outputs["Hostname"] = hedgedoc.Output{
		Value: map[string]any{"Fn::GetAtt": []any{"Hedgedoc1Cdn", "DomainName"}},
	}

	assert.Equal(t, []string{
		"Hedgedoc1User: DependsOn unknown resource Absent",
		"Hedgedoc1User: Fn::GetAtt to unknown resource Gone",
		"Hedgedoc1User: Ref to unknown resource Missing",
		"output Hostname: Fn::GetAtt to unknown resource Hedgedoc1Cdn",
	}, CheckReferences(tmpl))
}

func TestValidateTemplate(t *testing.T) {
	result, err := ValidateTemplate(sampleTemplate())
	require.NoError(t, err)
	assert.Empty(t, result.References)
	require.NotNil(t, result.Schema)
	assert.True(t, result.Schema.Valid)
	assert.Equal(t, 2, result.Resources)
	require.NotNil(t, result.CfnLintResult)

	contract := result.Contract()
	assert.Equal(t, result.Passed(), contract.Success)
	assert.Equal(t, 2, contract.Resources)
}

func TestValidateTemplate_Nil(t *testing.T) {
	_, err := ValidateTemplate(nil)
	assert.Error(t, err)
}

func TestResult_Passed(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"clean", Result{CfnLintResult: &CfnLintResult{Passed: true}}, true},
		{"warnings only", Result{CfnLintResult: &CfnLintResult{Passed: true, Warnings: []string{"W1"}}}, true},
		{"lint errors", Result{CfnLintResult: &CfnLintResult{Errors: []string{"E1"}}}, false},
		{"dangling reference", Result{References: []string{"x"}, CfnLintResult: &CfnLintResult{Passed: true}}, false},
		{"schema errors", Result{Schema: &schema.Result{Valid: false}, CfnLintResult: &CfnLintResult{Passed: true}}, false},
		{"schema warnings only", Result{Schema: &schema.Result{Valid: true}, CfnLintResult: &CfnLintResult{Passed: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Passed())
		})
	}
}

func TestResult_Contract(t *testing.T) {
	r := Result{
		References: []string{"A: Ref to unknown resource B"},
		Schema: &schema.Result{
			Errors:   []schema.Error{{Resource: "A", Property: "VpcId", Message: "missing required property: VpcId"}},
			Warnings: []schema.Error{{Resource: "C", Property: "Type", Message: "unknown resource type: AWS::X::Y (schema not available for validation)"}},
		},
		CfnLintResult: &CfnLintResult{
			Errors:        []string{"E1"},
			Warnings:      []string{"W1"},
			Informational: []string{"I1"},
		},
		Resources: 3,
	}
	c := r.Contract()
	assert.False(t, c.Success)
	assert.Equal(t, []string{"A: Ref to unknown resource B", "A.VpcId: missing required property: VpcId", "E1"}, c.Errors)
	assert.Equal(t, []string{"C.Type: unknown resource type: AWS::X::Y (schema not available for validation)", "W1", "I1"}, c.Warnings)
	assert.Equal(t, 3, c.Resources)
}

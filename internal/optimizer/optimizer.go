// Package optimizer suggests improvements to a deployment plan.
// It inspects the rendered properties of each resource for security, cost,
// performance, and reliability issues.
package optimizer

import (
	"sort"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// Options configures the optimizer.
type Options struct {
	// Category filters suggestions: "all", "security", "cost", "performance", "reliability"
	Category string
}

// Result contains optimization suggestions.
type Result struct {
	Suggestions []hedgedoc.OptimizeSuggestion
	Summary     hedgedoc.OptimizeSummary
}

// Optimize analyzes the resources of a plan and returns suggestions,
// sorted by resource and rule.
func Optimize(t *hedgedoc.Template, opts Options) *Result {
	result := &Result{}
	if t == nil {
		return result
	}

	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		result.Suggestions = append(result.Suggestions, analyzeResource(id, t.Resources[id], opts.Category)...)
	}

	result.Summary = calculateSummary(result.Suggestions)
	return result
}

// analyzeResource applies optimization rules to a single resource.
func analyzeResource(id string, def hedgedoc.ResourceDef, category string) []hedgedoc.OptimizeSuggestion {
	var suggestions []hedgedoc.OptimizeSuggestion

	res := resource{id: id, def: def}
	for _, rule := range getRulesForType(def.Type) {
		if category != "" && category != "all" && rule.Category != category {
			continue
		}
		if !rule.Applies(res) {
			continue
		}
		suggestions = append(suggestions, hedgedoc.OptimizeSuggestion{
			Rule:        rule.ID,
			Resource:    id,
			Type:        def.Type,
			Category:    rule.Category,
			Severity:    rule.Severity,
			Title:       rule.Title,
			Description: rule.Description,
			Suggestion:  rule.Suggestion,
		})
	}

	return suggestions
}

// calculateSummary tallies suggestions by category.
func calculateSummary(suggestions []hedgedoc.OptimizeSuggestion) hedgedoc.OptimizeSummary {
	summary := hedgedoc.OptimizeSummary{}
	for _, s := range suggestions {
		switch s.Category {
		case "security":
			summary.Security++
		case "cost":
			summary.Cost++
		case "performance":
			summary.Performance++
		case "reliability":
			summary.Reliability++
		}
		summary.Total++
	}
	return summary
}

// Rule represents an optimization rule.
type Rule struct {
	ID          string
	Category    string
	Severity    string
	Title       string
	Description string
	Suggestion  string
	Applies     func(res resource) bool
}

// getRulesForType returns applicable rules for a resource type.
func getRulesForType(resourceType string) []Rule {
	switch resourceType {
	case "AWS::EC2::SecurityGroup":
		return securityGroupRules
	case "AWS::S3::Bucket":
		return s3BucketRules
	case "AWS::IAM::UserPolicy", "AWS::IAM::Role":
		return iamPolicyRules
	case "AWS::IAM::AccessKey":
		return accessKeyRules
	case "AWS::RDS::DBInstance":
		return rdsInstanceRules
	case "AWS::CloudFront::Distribution":
		return distributionRules
	case "AWS::ECS::Service":
		return ecsServiceRules
	case "AWS::Logs::LogGroup":
		return logGroupRules
	}
	return nil
}

// Package schema provides offline CloudFormation schema validation.
// It checks the resources of a plan against the schemas of the resource
// types a HedgeDoc stack creates.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lex00/cloudformation-schema-go/enums"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// Options configures schema validation.
type Options struct {
	// Strict reports properties the schema does not know as warnings.
	Strict bool
}

// Error describes one schema violation.
type Error struct {
	Resource string `json:"resource"`
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (e Error) String() string {
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Property, e.Message)
}

// Result contains schema validation results.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Error `json:"errors,omitempty"`
	Warnings []Error `json:"warnings,omitempty"`
}

// ValidateTemplate validates the resources of t, in logical id order.
func ValidateTemplate(t *hedgedoc.Template, opts Options) *Result {
	result := &Result{Valid: true}
	if t == nil {
		return result
	}

	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		errs, warnings := validateResource(id, t.Resources[id], opts)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateResource(name string, resource hedgedoc.ResourceDef, opts Options) ([]Error, []Error) {
	var errs, warnings []Error

	if !isValidResourceType(resource.Type) {
		errs = append(errs, Error{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("invalid resource type format: %s", resource.Type),
		})
	}

	schema, ok := resourceSchemas[resource.Type]
	if !ok {
		warnings = append(warnings, Error{
			Resource: name,
			Property: "Type",
			Message:  fmt.Sprintf("unknown resource type: %s (schema not available for validation)", resource.Type),
		})
		return errs, warnings
	}

	for _, required := range schema.Required {
		if _, exists := resource.Properties[required]; !exists {
			errs = append(errs, Error{
				Resource: name,
				Property: required,
				Message:  fmt.Sprintf("missing required property: %s", required),
			})
		}
	}

	props := make([]string, 0, len(resource.Properties))
	for propName := range resource.Properties {
		props = append(props, propName)
	}
	sort.Strings(props)

	for _, propName := range props {
		propValue := resource.Properties[propName]
		propSchema, ok := schema.Properties[propName]
		if !ok {
			if opts.Strict {
				warnings = append(warnings, Error{
					Resource: name,
					Property: propName,
					Message:  fmt.Sprintf("unknown property: %s", propName),
				})
			}
			continue
		}
		errs = append(errs, validateProperty(name, propName, propValue, propSchema)...)
		errs = append(errs, validateEnum(name, resource.Type, propName, propValue)...)
	}

	return errs, warnings
}

// isValidResourceType checks if a resource type has valid format.
func isValidResourceType(resourceType string) bool {
	if strings.HasPrefix(resourceType, "Custom::") {
		return true
	}
	parts := strings.Split(resourceType, "::")
	if len(parts) != 3 {
		return false
	}
	return parts[0] == "AWS"
}

// validateProperty validates a property value against its schema.
func validateProperty(resource, property string, value any, schema PropertySchema) []Error {
	var errs []Error

	if !isValidType(value, schema.Type) {
		errs = append(errs, Error{
			Resource: resource,
			Property: property,
			Message:  fmt.Sprintf("expected type %s", schema.Type),
		})
	}

	if len(schema.AllowedValues) > 0 {
		if strVal, ok := value.(string); ok {
			found := false
			for _, allowed := range schema.AllowedValues {
				if strVal == allowed {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, Error{
					Resource: resource,
					Property: property,
					Message:  fmt.Sprintf("value %q not in allowed values: %v", strVal, schema.AllowedValues),
				})
			}
		}
	}

	return errs
}

// enumServices maps CloudFormation service names to the service names of
// the enums package.
var enumServices = map[string]string{
	"EC2":                    "ec2",
	"ECS":                    "ecs",
	"S3":                     "s3",
	"ElasticLoadBalancingV2": "elbv2",
	"Logs":                   "logs",
	"CertificateManager":     "acm",
}

// validateEnum checks string values of properties that the enums package
// knows against the service's allowed values.
func validateEnum(resource, resourceType, property string, value any) []Error {
	strVal, ok := value.(string)
	if !ok {
		return nil
	}
	parts := strings.Split(resourceType, "::")
	if len(parts) != 3 {
		return nil
	}
	service := enumServices[parts[1]]
	if service == "" {
		return nil
	}
	enumName := enums.GetEnumForProperty(service, property)
	if enumName == "" || enums.IsValidValue(service, enumName, strVal) {
		return nil
	}
	return []Error{{
		Resource: resource,
		Property: property,
		Message:  fmt.Sprintf("value %q is not a valid %s", strVal, enumName),
	}}
}

// isValidType checks if a value matches the expected type.
func isValidType(value any, expectedType string) bool {
	// Intrinsic functions resolve at deploy time.
	if m, ok := value.(map[string]any); ok {
		for key := range m {
			if strings.HasPrefix(key, "Fn::") || key == "Ref" {
				return true
			}
		}
	}

	switch expectedType {
	case "String":
		_, ok := value.(string)
		return ok
	case "Integer":
		switch value.(type) {
		case int, int32, int64, float64:
			return true
		}
		return false
	case "Boolean":
		_, ok := value.(bool)
		return ok
	case "List":
		_, ok := value.([]any)
		return ok
	case "Map":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

// ResourceSchema defines the schema for a resource type.
type ResourceSchema struct {
	Required   []string
	Properties map[string]PropertySchema
}

// PropertySchema defines the schema for a property.
type PropertySchema struct {
	Type          string
	AllowedValues []string
}

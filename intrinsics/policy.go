// Package intrinsics provides CloudFormation intrinsic functions.
// This file contains IAM policy document types and helpers.
package intrinsics

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like Condition blocks and principals.
//
// Example:
//
//	Condition: Json{
//	    Bool: Json{"aws:SecureTransport": false},
//	}
type Json = map[string]any

// List creates a typed slice from the given items.
// Avoids verbose slice type annotations in struct literals.
//
// Example:
//
//	Actions: List(ForwardAction),
func List[T any](items ...T) []T {
	return items
}

// Any creates a []any slice from the given items.
// Use for fields typed as []any that accept mixed types or deferred values.
//
// Example:
//
//	SecurityGroups: Any(serviceSG.GroupID(), "sg-0123"),
func Any(items ...any) []any {
	return items
}

// PolicyVersion is the current IAM policy language version.
const PolicyVersion = "2012-10-17"

// PolicyDocument represents an IAM policy document.
//
// Example:
//
//	var MyPolicy = PolicyDocument{
//	    Version:   PolicyVersion,
//	    Statement: []any{MyStatement},
//	}
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...any) PolicyDocument {
	return PolicyDocument{Version: PolicyVersion, Statement: statements}
}

// PolicyStatement represents an IAM policy statement.
//
// Principal and Resource are typed any so they can carry deferred values
// such as a user ARN that is only known once the user exists.
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// Allow returns an Allow statement for the given actions and resources.
func Allow(actions, resources any) PolicyStatement {
	return PolicyStatement{Effect: "Allow", Action: actions, Resource: resources}
}

// --- Principal Helpers ---
//
// Principals are plain maps so that deferred ARNs inside them are visited
// by the serializer like any other property value.

// ServicePrincipal returns a {"Service": ...} principal.
//
//	ServicePrincipal("ecs-tasks.amazonaws.com")
func ServicePrincipal(services ...any) Json {
	return principal("Service", services)
}

// AWSPrincipal returns an {"AWS": ...} principal.
//
//	AWSPrincipal(user.Arn())
func AWSPrincipal(arns ...any) Json {
	return principal("AWS", arns)
}

func principal(key string, values []any) Json {
	if len(values) == 1 {
		return Json{key: values[0]}
	}
	return Json{key: values}
}

// AllPrincipal represents the wildcard principal "*".
const AllPrincipal = "*"

// IAM condition operators used by the stacks.
const (
	StringEquals = "StringEquals"
	Bool         = "Bool"
)

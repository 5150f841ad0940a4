// Package intrinsics provides CloudFormation intrinsic functions and IAM
// policy helpers used by the resource descriptors.
//
// The core intrinsic types are re-exported from cloudformation-schema-go.
// Plans render references symbolically where a value is only known to the
// provider:
//
//	GetAtt{LogicalName: "Hedgedoc1Cdn", Attribute: "DomainName"}
//	  → {"Fn::GetAtt": ["Hedgedoc1Cdn", "DomainName"]}
//	Ref{LogicalName: "Hedgedoc1Vpc"} → {"Ref": "Hedgedoc1Vpc"}
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Cidr represents a CloudFormation Fn::Cidr intrinsic function.
	Cidr = intrinsics.Cidr

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// NameTag returns the conventional Name tag for a resource.
func NameTag(name string) Tag {
	return Tag{Key: "Name", Value: name}
}

// Tags builds a tag list with a Name tag followed by extra key/value pairs
// in the given order. kv must have an even length.
func Tags(name string, kv ...string) []any {
	tags := []any{NameTag(name)}
	for i := 0; i+1 < len(kv); i += 2 {
		tags = append(tags, Tag{Key: kv[i], Value: kv[i+1]})
	}
	return tags
}

// Helper functions for creating pointers to primitive types.
// Descriptor fields whose CloudFormation default differs from the Go zero
// value are pointers, so an explicit false or 0 is still serialized.

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int {
	return &i
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

func TestValidateTemplate_Valid(t *testing.T) {
	tmpl := &hedgedoc.Template{
		Resources: map[string]hedgedoc.ResourceDef{
			"NotesDbSubnets": {
				Type: "AWS::RDS::DBSubnetGroup",
				Properties: map[string]any{
					"DBSubnetGroupDescription": "HedgeDoc database subnets",
					"SubnetIds":                []any{map[string]any{"Ref": "NotesSubnetA"}, map[string]any{"Ref": "NotesSubnetB"}},
				},
			},
			"NotesKey": {
				Type: "AWS::IAM::AccessKey",
				Properties: map[string]any{
					"UserName": map[string]any{"Ref": "NotesUser"},
					"Status":   "Active",
				},
			},
			"NotesDb": {
				Type: "AWS::RDS::DBInstance",
				Properties: map[string]any{
					"DBInstanceClass":       "db.t3.micro",
					"StorageType":           "standard",
					"BackupRetentionPeriod": int64(0),
				},
			},
		},
	}

	result := ValidateTemplate(tmpl, Options{})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateTemplate_Nil(t *testing.T) {
	result := ValidateTemplate(nil, Options{})
	assert.True(t, result.Valid)
}

func TestValidateTemplate_MissingRequired(t *testing.T) {
	tmpl := &hedgedoc.Template{
		Resources: map[string]hedgedoc.ResourceDef{
			"NotesAssoc": {Type: "AWS::EC2::SubnetRouteTableAssociation", Properties: map[string]any{}},
		},
	}

	result := ValidateTemplate(tmpl, Options{})
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "RouteTableId", result.Errors[0].Property)
	assert.Equal(t, "SubnetId", result.Errors[1].Property)
}

func TestValidateTemplate_WrongTypeAndValue(t *testing.T) {
	tmpl := &hedgedoc.Template{
		Resources: map[string]hedgedoc.ResourceDef{
			"NotesDb": {
				Type: "AWS::RDS::DBInstance",
				Properties: map[string]any{
					"DBInstanceClass":    "db.t3.micro",
					"DeletionProtection": "no",
					"StorageType":        "floppy",
				},
			},
		},
	}

	result := ValidateTemplate(tmpl, Options{})
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "NotesDb.DeletionProtection: expected type Boolean", result.Errors[0].String())
	assert.Equal(t, "StorageType", result.Errors[1].Property)
	assert.Contains(t, result.Errors[1].Message, `"floppy"`)
}

func TestValidateTemplate_UnknownTypeAndProperty(t *testing.T) {
	tmpl := &hedgedoc.Template{
		Resources: map[string]hedgedoc.ResourceDef{
			"NotesQueue": {Type: "AWS::SQS::Queue"},
			"NotesLogs": {
				Type:       "AWS::Logs::LogGroup",
				Properties: map[string]any{"KmsKeyId": "alias/logs"},
			},
		},
	}

	result := ValidateTemplate(tmpl, Options{})
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "NotesQueue", result.Warnings[0].Resource)

	strict := ValidateTemplate(tmpl, Options{Strict: true})
	require.Len(t, strict.Warnings, 2)
	assert.Equal(t, "KmsKeyId", strict.Warnings[0].Property)
}

func TestIsValidResourceType(t *testing.T) {
	tests := []struct {
		resourceType string
		want         bool
	}{
		{"AWS::S3::Bucket", true},
		{"Custom::Anything", true},
		{"AWS::S3", false},
		{"Foo::S3::Bucket", false},
	}
	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidResourceType(tt.resourceType))
		})
	}
}

func TestIsValidType(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
		want     bool
	}{
		{"string", "x", "String", true},
		{"int64 integer", int64(5), "Integer", true},
		{"json number integer", float64(5), "Integer", true},
		{"string integer", "5", "Integer", false},
		{"bool", true, "Boolean", true},
		{"list", []any{"a"}, "List", true},
		{"map", map[string]any{}, "Map", true},
		{"ref as string", map[string]any{"Ref": "NotesVpc"}, "String", true},
		{"getatt as list", map[string]any{"Fn::GetAtt": []any{"A", "Arn"}}, "List", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidType(tt.value, tt.expected))
		})
	}
}

func TestValidateEnum_IgnoresNonEnumValues(t *testing.T) {
	assert.Empty(t, validateEnum("NotesUser", "AWS::IAM::User", "Path", "/hedgedoc/"))
	assert.Empty(t, validateEnum("NotesSvc", "AWS::ECS::Service", "DesiredCount", int64(1)))
}

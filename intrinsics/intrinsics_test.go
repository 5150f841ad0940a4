package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_MarshalJSON(t *testing.T) {
	ref := Ref{LogicalName: "Hedgedoc1Vpc"}
	data, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "Hedgedoc1Vpc"}`, string(data))
}

func TestGetAtt_MarshalJSON(t *testing.T) {
	getAtt := GetAtt{LogicalName: "Hedgedoc1Cdn", Attribute: "DomainName"}
	data, err := json.Marshal(getAtt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt": ["Hedgedoc1Cdn", "DomainName"]}`, string(data))
}

func TestJoin_MarshalJSON(t *testing.T) {
	join := Join{Delimiter: ",", Values: []any{"a", "b", "c"}}
	data, err := json.Marshal(join)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join": [",", ["a", "b", "c"]]}`, string(data))
}

func TestSelect_MarshalJSON(t *testing.T) {
	sel := Select{Index: 0, List: GetAZs{Region: ""}}
	data, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Select"`)
	assert.Contains(t, string(data), `"Fn::GetAZs"`)
}

func TestCidr_MarshalJSON(t *testing.T) {
	cidr := Cidr{IPBlock: "10.100.0.0/16", Count: 2, CidrBits: 8}
	data, err := json.Marshal(cidr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Cidr": ["10.100.0.0/16", 2, 8]}`, string(data))
}

func TestTags(t *testing.T) {
	tags := Tags("hedgedoc1-vpc", "Stack", "dev")
	require.Len(t, tags, 2)
	assert.Equal(t, NameTag("hedgedoc1-vpc"), tags[0])
	assert.Equal(t, Tag{Key: "Stack", Value: "dev"}, tags[1])
}

func TestPolicyDocument_MarshalJSON(t *testing.T) {
	doc := NewPolicyDocument(PolicyStatement{
		Effect:    "Allow",
		Principal: AWSPrincipal("arn:aws:iam::123456789012:user/system/app"),
		Action:    []any{"s3:*"},
		Resource:  []any{"arn:aws:s3:::bucket/*"},
	})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": "arn:aws:iam::123456789012:user/system/app"},
			"Action": ["s3:*"],
			"Resource": ["arn:aws:s3:::bucket/*"]
		}]
	}`, string(data))
}

func TestPrincipals(t *testing.T) {
	tests := []struct {
		name     string
		got      Json
		expected Json
	}{
		{
			name:     "single service",
			got:      ServicePrincipal("ecs-tasks.amazonaws.com"),
			expected: Json{"Service": "ecs-tasks.amazonaws.com"},
		},
		{
			name:     "multiple aws",
			got:      AWSPrincipal("a", "b"),
			expected: Json{"AWS": []any{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestAllow(t *testing.T) {
	stmt := Allow("s3:GetObject", "arn:aws:s3:::b/*")
	assert.Equal(t, "Allow", stmt.Effect)
	assert.Equal(t, "s3:GetObject", stmt.Action)
}

func TestList(t *testing.T) {
	assert.Equal(t, []int{1, 2}, List(1, 2))
	assert.Equal(t, []any{"a", 1}, Any("a", 1))
}

func TestPtrHelpers(t *testing.T) {
	assert.False(t, *BoolPtr(false))
	assert.Equal(t, 0, *IntPtr(0))
}

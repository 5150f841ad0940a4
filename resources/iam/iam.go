// Package iam contains CloudFormation AWS::IAM resource descriptors.
package iam

// Attribute names reported for IAM resources.
const (
	AttrArn             = "Arn"
	AttrSecretAccessKey = "SecretAccessKey"
)

// User represents AWS::IAM::User.
type User struct {
	UserName any
	Path     string
	Tags     []any
}

// ResourceType returns the CloudFormation type.
func (User) ResourceType() string { return "AWS::IAM::User" }

// UserPolicy represents AWS::IAM::UserPolicy.
type UserPolicy struct {
	UserName       any
	PolicyName     string
	PolicyDocument any
}

// ResourceType returns the CloudFormation type.
func (UserPolicy) ResourceType() string { return "AWS::IAM::UserPolicy" }

// AccessKey represents AWS::IAM::AccessKey.
type AccessKey struct {
	UserName any
	Status   string
}

// ResourceType returns the CloudFormation type.
func (AccessKey) ResourceType() string { return "AWS::IAM::AccessKey" }

// Role represents AWS::IAM::Role.
type Role struct {
	RoleName                 any
	AssumeRolePolicyDocument any
	ManagedPolicyArns        []any
	Path                     string
	Tags                     []any
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// ServerCertificate represents AWS::IAM::ServerCertificate.
type ServerCertificate struct {
	ServerCertificateName any
	CertificateBody       any
	PrivateKey            any
	Path                  string
	Tags                  []any
}

// ResourceType returns the CloudFormation type.
func (ServerCertificate) ResourceType() string { return "AWS::IAM::ServerCertificate" }

// ECSTaskExecutionPolicyArn is the managed policy granting ECS tasks image
// pull and log delivery.
const ECSTaskExecutionPolicyArn = "arn:aws:iam::aws:policy/service-role/AmazonECSTaskExecutionRolePolicy"

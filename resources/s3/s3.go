// Package s3 contains CloudFormation AWS::S3 resource descriptors.
package s3

// Attribute names reported for S3 resources.
const (
	AttrArn                = "Arn"
	AttrDomainName         = "DomainName"
	AttrRegionalDomainName = "RegionalDomainName"
)

// Bucket represents AWS::S3::Bucket.
type Bucket struct {
	BucketName                     any
	OwnershipControls              *Bucket_OwnershipControls
	PublicAccessBlockConfiguration *Bucket_PublicAccessBlockConfiguration
	Tags                           []any
}

// ResourceType returns the CloudFormation type.
func (Bucket) ResourceType() string { return "AWS::S3::Bucket" }

// Bucket_OwnershipControls sets object ownership.
type Bucket_OwnershipControls struct {
	Rules []Bucket_OwnershipControlsRule
}

// Bucket_OwnershipControlsRule is a single ownership rule.
type Bucket_OwnershipControlsRule struct {
	ObjectOwnership string
}

// Bucket_PublicAccessBlockConfiguration controls public access to the
// bucket. Every flag defaults to false in CloudFormation, so they are
// pointers to keep an explicit false in the template.
type Bucket_PublicAccessBlockConfiguration struct {
	BlockPublicAcls       *bool
	BlockPublicPolicy     *bool
	IgnorePublicAcls      *bool
	RestrictPublicBuckets *bool
}

// BucketPolicy represents AWS::S3::BucketPolicy.
type BucketPolicy struct {
	Bucket         any
	PolicyDocument any
}

// ResourceType returns the CloudFormation type.
func (BucketPolicy) ResourceType() string { return "AWS::S3::BucketPolicy" }

package hedgedoc

import (
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/output"
	"github.com/lex00/hedgedoc-aws-go/resources/iam"
	"github.com/lex00/hedgedoc-aws-go/resources/s3"
)

// storage registers the upload bucket and the IAM user HedgeDoc uses to
// write to it.
func (b *builder) storage() error {
	s := b.stack
	// Only the cdn variant serves uploads publicly.
	public := !b.tls()
	block := !public

	var err error
	s.Bucket, err = b.register("bucket", &s3.Bucket{
		OwnershipControls: &s3.Bucket_OwnershipControls{
			Rules: []s3.Bucket_OwnershipControlsRule{{ObjectOwnership: "BucketOwnerEnforced"}},
		},
		PublicAccessBlockConfiguration: &s3.Bucket_PublicAccessBlockConfiguration{
			BlockPublicAcls:       intrinsics.BoolPtr(block),
			BlockPublicPolicy:     intrinsics.BoolPtr(block),
			IgnorePublicAcls:      intrinsics.BoolPtr(block),
			RestrictPublicBuckets: intrinsics.BoolPtr(block),
		},
		Tags: intrinsics.Tags(b.name + "-bucket"),
	})
	if err != nil {
		return err
	}
	bucketArn := s.Bucket.Attr(s3.AttrArn)
	objects := output.Sprintf("%s/*", bucketArn)

	s.User, err = b.register("s3-user", &iam.User{
		Path: "/system/",
		Tags: intrinsics.Tags(b.name + "-s3-user"),
	})
	if err != nil {
		return err
	}

	s.UserPolicy, err = b.register("s3-user-policy", &iam.UserPolicy{
		UserName:   s.User.ID(),
		PolicyName: b.name + "-s3-access",
		PolicyDocument: intrinsics.NewPolicyDocument(
			intrinsics.Allow("s3:*", intrinsics.Any(bucketArn, objects)),
		),
	})
	if err != nil {
		return err
	}

	s.AccessKey, err = b.register("s3-access-key", &iam.AccessKey{
		UserName: s.User.ID(),
		Status:   "Active",
	})
	if err != nil {
		return err
	}

	userAccess := intrinsics.Allow("s3:*", intrinsics.Any(objects))
	userAccess.Principal = intrinsics.AWSPrincipal(s.User.Attr(iam.AttrArn))
	statements := []any{userAccess}
	if public {
		publicRead := intrinsics.Allow("s3:GetObject", intrinsics.Any(objects))
		publicRead.Principal = intrinsics.AllPrincipal
		statements = append(statements, publicRead)
	}

	s.BucketPolicy, err = b.register("bucket-policy", &s3.BucketPolicy{
		Bucket:         s.Bucket.ID(),
		PolicyDocument: intrinsics.NewPolicyDocument(statements...),
	})
	return err
}

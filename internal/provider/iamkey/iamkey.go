// Package iamkey creates IAM access keys through the IAM API.
//
// Cloud Control never returns the write-only SecretAccessKey of an
// AWS::IAM::AccessKey, so keys whose secret is consumed by other resources
// are created here instead.
package iamkey

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

// ResourceType is the CloudFormation type handled by Provider.
const ResourceType = "AWS::IAM::AccessKey"

// AttrSecretAccessKey is the attribute carrying the key's secret.
const AttrSecretAccessKey = "SecretAccessKey"

// API is the subset of the IAM client used by Provider.
type API interface {
	CreateAccessKey(ctx context.Context, in *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error)
	UpdateAccessKey(ctx context.Context, in *iam.UpdateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.UpdateAccessKeyOutput, error)
	GetAccessKeyLastUsed(ctx context.Context, in *iam.GetAccessKeyLastUsedInput, optFns ...func(*iam.Options)) (*iam.GetAccessKeyLastUsedOutput, error)
	DeleteAccessKey(ctx context.Context, in *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

// Provider implements engine.Provider for AWS::IAM::AccessKey.
type Provider struct {
	client API
}

// New creates a provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithClient(iam.NewFromConfig(cfg))
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API) *Provider {
	return &Provider{client: client}
}

// Create creates a key for the UserName property. The key id is the
// physical id and the secret is reported as SecretAccessKey.
func (p *Provider) Create(ctx context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	if req.Type != ResourceType {
		return nil, fmt.Errorf("iamkey: unsupported type %s", req.Type)
	}
	user, _ := req.Properties["UserName"].(string)
	if user == "" {
		return nil, fmt.Errorf("%s: UserName is required", req.URN)
	}

	out, err := p.client.CreateAccessKey(ctx, &iam.CreateAccessKeyInput{UserName: aws.String(user)})
	if err != nil {
		return nil, fmt.Errorf("creating access key for %s: %w", user, err)
	}
	if out.AccessKey == nil || aws.ToString(out.AccessKey.AccessKeyId) == "" {
		return nil, fmt.Errorf("creating access key for %s: no key returned", user)
	}
	key := out.AccessKey
	id := aws.ToString(key.AccessKeyId)

	if status, _ := req.Properties["Status"].(string); status == string(types.StatusTypeInactive) {
		_, err := p.client.UpdateAccessKey(ctx, &iam.UpdateAccessKeyInput{
			AccessKeyId: key.AccessKeyId,
			UserName:    aws.String(user),
			Status:      types.StatusTypeInactive,
		})
		if err != nil {
			return &engine.CreateResponse{ID: id}, fmt.Errorf("deactivating access key %s: %w", id, err)
		}
	}

	return &engine.CreateResponse{
		ID:         id,
		Attributes: map[string]string{AttrSecretAccessKey: aws.ToString(key.SecretAccessKey)},
	}, nil
}

// Delete removes a key. The owning user is looked up from the key id; a
// key or user that no longer exists counts as deleted.
func (p *Provider) Delete(ctx context.Context, req engine.DeleteRequest) error {
	used, err := p.client.GetAccessKeyLastUsed(ctx, &iam.GetAccessKeyLastUsedInput{
		AccessKeyId: aws.String(req.ID),
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("looking up owner of access key %s: %w", req.ID, err)
	}

	_, err = p.client.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		AccessKeyId: aws.String(req.ID),
		UserName:    used.UserName,
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("deleting access key %s: %w", req.ID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NoSuchEntityException
	return errors.As(err, &notFound)
}

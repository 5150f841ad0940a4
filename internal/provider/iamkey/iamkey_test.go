package iamkey

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

type fakeClient struct {
	created []string
	updated []*iam.UpdateAccessKeyInput
	deleted []*iam.DeleteAccessKeyInput
	// owners maps key ids to user names.
	owners    map[string]string
	createErr error
}

func (f *fakeClient) CreateAccessKey(_ context.Context, in *iam.CreateAccessKeyInput, _ ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user := aws.ToString(in.UserName)
	f.created = append(f.created, user)
	return &iam.CreateAccessKeyOutput{AccessKey: &types.AccessKey{
		AccessKeyId:     aws.String("AKIAEXAMPLE"),
		SecretAccessKey: aws.String("wJalrXUtnFEMI/K7MDENG"),
		Status:          types.StatusTypeActive,
		UserName:        in.UserName,
	}}, nil
}

func (f *fakeClient) UpdateAccessKey(_ context.Context, in *iam.UpdateAccessKeyInput, _ ...func(*iam.Options)) (*iam.UpdateAccessKeyOutput, error) {
	f.updated = append(f.updated, in)
	return &iam.UpdateAccessKeyOutput{}, nil
}

func (f *fakeClient) GetAccessKeyLastUsed(_ context.Context, in *iam.GetAccessKeyLastUsedInput, _ ...func(*iam.Options)) (*iam.GetAccessKeyLastUsedOutput, error) {
	user, ok := f.owners[aws.ToString(in.AccessKeyId)]
	if !ok {
		return nil, &types.NoSuchEntityException{Message: aws.String("unknown key")}
	}
	return &iam.GetAccessKeyLastUsedOutput{UserName: aws.String(user)}, nil
}

func (f *fakeClient) DeleteAccessKey(_ context.Context, in *iam.DeleteAccessKeyInput, _ ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error) {
	f.deleted = append(f.deleted, in)
	return &iam.DeleteAccessKeyOutput{}, nil
}

func keyRequest(props map[string]any) engine.CreateRequest {
	return engine.CreateRequest{
		URN:        "urn:hedgedoc:notes::AWS::IAM::AccessKey::notes-s3-access-key",
		Type:       ResourceType,
		LogicalID:  "NotesS3AccessKey",
		Properties: props,
	}
}

func TestCreate_ReportsSecret(t *testing.T) {
	client := &fakeClient{}
	resp, err := NewWithClient(client).Create(context.Background(), keyRequest(map[string]any{
		"UserName": "notes-s3-user",
		"Status":   "Active",
	}))
	require.NoError(t, err)

	assert.Equal(t, "AKIAEXAMPLE", resp.ID)
	assert.Equal(t, "wJalrXUtnFEMI/K7MDENG", resp.Attributes[AttrSecretAccessKey])
	assert.Equal(t, []string{"notes-s3-user"}, client.created)
	assert.Empty(t, client.updated)
}

func TestCreate_InactiveKeyIsDeactivated(t *testing.T) {
	client := &fakeClient{}
	_, err := NewWithClient(client).Create(context.Background(), keyRequest(map[string]any{
		"UserName": "notes-s3-user",
		"Status":   "Inactive",
	}))
	require.NoError(t, err)

	require.Len(t, client.updated, 1)
	assert.Equal(t, types.StatusTypeInactive, client.updated[0].Status)
	assert.Equal(t, "AKIAEXAMPLE", aws.ToString(client.updated[0].AccessKeyId))
}

func TestCreate_RequiresUserName(t *testing.T) {
	_, err := NewWithClient(&fakeClient{}).Create(context.Background(), keyRequest(map[string]any{}))
	assert.Error(t, err)
}

func TestCreate_Error(t *testing.T) {
	boom := errors.New("limit exceeded")
	resp, err := NewWithClient(&fakeClient{createErr: boom}).Create(context.Background(), keyRequest(map[string]any{
		"UserName": "notes-s3-user",
	}))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, resp)
}

func TestDelete_LooksUpOwner(t *testing.T) {
	client := &fakeClient{owners: map[string]string{"AKIAEXAMPLE": "notes-s3-user"}}
	err := NewWithClient(client).Delete(context.Background(), engine.DeleteRequest{Type: ResourceType, ID: "AKIAEXAMPLE"})
	require.NoError(t, err)

	require.Len(t, client.deleted, 1)
	assert.Equal(t, "notes-s3-user", aws.ToString(client.deleted[0].UserName))
	assert.Equal(t, "AKIAEXAMPLE", aws.ToString(client.deleted[0].AccessKeyId))
}

func TestDelete_MissingKeyIsSuccess(t *testing.T) {
	client := &fakeClient{}
	err := NewWithClient(client).Delete(context.Background(), engine.DeleteRequest{Type: ResourceType, ID: "AKIAGONE"})
	assert.NoError(t, err)
	assert.Empty(t, client.deleted)
}

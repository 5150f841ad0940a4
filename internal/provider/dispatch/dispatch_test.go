package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

type recordingProvider struct {
	name    string
	created []string
	deleted []string
}

func (p *recordingProvider) Create(_ context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	p.created = append(p.created, req.Type)
	return &engine.CreateResponse{ID: p.name + "-" + req.LogicalID}, nil
}

func (p *recordingProvider) Delete(_ context.Context, req engine.DeleteRequest) error {
	p.deleted = append(p.deleted, req.Type)
	return nil
}

func TestProvider_RoutesByType(t *testing.T) {
	fallback := &recordingProvider{name: "cloudcontrol"}
	keys := &recordingProvider{name: "iam"}
	p := New(fallback, map[string]engine.Provider{"AWS::IAM::AccessKey": keys})

	resp, err := p.Create(context.Background(), engine.CreateRequest{Type: "AWS::IAM::AccessKey", LogicalID: "Key"})
	require.NoError(t, err)
	assert.Equal(t, "iam-Key", resp.ID)

	resp, err = p.Create(context.Background(), engine.CreateRequest{Type: "AWS::IAM::User", LogicalID: "User"})
	require.NoError(t, err)
	assert.Equal(t, "cloudcontrol-User", resp.ID)

	require.NoError(t, p.Delete(context.Background(), engine.DeleteRequest{Type: "AWS::IAM::AccessKey", ID: "AKIA"}))
	require.NoError(t, p.Delete(context.Background(), engine.DeleteRequest{Type: "AWS::S3::Bucket", ID: "b"}))

	assert.Equal(t, []string{"AWS::IAM::AccessKey"}, keys.created)
	assert.Equal(t, []string{"AWS::IAM::AccessKey"}, keys.deleted)
	assert.Equal(t, []string{"AWS::IAM::User"}, fallback.created)
	assert.Equal(t, []string{"AWS::S3::Bucket"}, fallback.deleted)
}

func TestProvider_For(t *testing.T) {
	fallback := &recordingProvider{name: "fallback"}
	routes := map[string]engine.Provider{"AWS::CertificateManager::Certificate": &recordingProvider{name: "acm"}}
	p := New(fallback, routes)
	routes["AWS::IAM::AccessKey"] = &recordingProvider{name: "late"}

	assert.Same(t, fallback, p.For("AWS::IAM::AccessKey"), "routes are copied")
	assert.NotSame(t, fallback, p.For("AWS::CertificateManager::Certificate"))
}

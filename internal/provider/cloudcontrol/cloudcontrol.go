// Package cloudcontrol creates and deletes resources through the AWS Cloud
// Control API, which accepts CloudFormation resource types and properties
// directly.
package cloudcontrol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cc "github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

// DefaultMaxWait bounds how long a single create or delete may take.
// CloudFront distributions and RDS instances routinely need most of it.
const DefaultMaxWait = 60 * time.Minute

// statusTimeout bounds the identifier lookup for a create the caller
// stopped waiting for.
const statusTimeout = 30 * time.Second

// tokenNamespace scopes client tokens so retried creates are idempotent.
var tokenNamespace = uuid.MustParse("a1d5e3c2-7b0f-4c55-8e1e-0c9f3d2b6a71")

// API is the subset of the Cloud Control client used by Provider.
type API interface {
	CreateResource(ctx context.Context, in *cc.CreateResourceInput, optFns ...func(*cc.Options)) (*cc.CreateResourceOutput, error)
	GetResource(ctx context.Context, in *cc.GetResourceInput, optFns ...func(*cc.Options)) (*cc.GetResourceOutput, error)
	DeleteResource(ctx context.Context, in *cc.DeleteResourceInput, optFns ...func(*cc.Options)) (*cc.DeleteResourceOutput, error)
	GetResourceRequestStatus(ctx context.Context, in *cc.GetResourceRequestStatusInput, optFns ...func(*cc.Options)) (*cc.GetResourceRequestStatusOutput, error)
}

// Provider implements engine.Provider on top of Cloud Control.
type Provider struct {
	client  API
	maxWait time.Duration
	// waiterOptions are passed to every request status waiter.
	waiterOptions []func(*cc.ResourceRequestSuccessWaiterOptions)
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxWait overrides DefaultMaxWait.
func WithMaxWait(d time.Duration) Option {
	return func(p *Provider) {
		p.maxWait = d
	}
}

// WithPollDelay sets the minimum and maximum delay between status polls.
func WithPollDelay(minDelay, maxDelay time.Duration) Option {
	return func(p *Provider) {
		p.waiterOptions = append(p.waiterOptions, func(o *cc.ResourceRequestSuccessWaiterOptions) {
			o.MinDelay = minDelay
			o.MaxDelay = maxDelay
		})
	}
}

// New creates a provider from an AWS config.
func New(cfg aws.Config, opts ...Option) *Provider {
	return NewWithClient(cc.NewFromConfig(cfg), opts...)
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API, opts ...Option) *Provider {
	p := &Provider{client: client, maxWait: DefaultMaxWait}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create submits the desired state, waits for the request to finish and
// reads back the resource model.
//
// Once Cloud Control has assigned an identifier, a failure still returns a
// response carrying it, so that an interrupted deployment records the
// resource and destroy can remove it.
func (p *Provider) Create(ctx context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	desired, err := json.Marshal(req.Properties)
	if err != nil {
		return nil, fmt.Errorf("encoding desired state: %w", err)
	}

	out, err := p.client.CreateResource(ctx, &cc.CreateResourceInput{
		TypeName:     aws.String(req.Type),
		DesiredState: aws.String(string(desired)),
		ClientToken:  aws.String(uuid.NewSHA1(tokenNamespace, []byte(req.URN+string(desired))).String()),
	})
	if err != nil {
		return nil, err
	}

	event, err := p.wait(ctx, out.ProgressEvent)
	if err != nil {
		if ctx.Err() != nil {
			if id := p.pendingIdentifier(ctx, out.ProgressEvent); id != "" {
				return &engine.CreateResponse{ID: id}, err
			}
		}
		return nil, err
	}
	id := aws.ToString(event.Identifier)
	if id == "" {
		return nil, fmt.Errorf("%s: request finished without an identifier", req.Type)
	}

	attrs := make(map[string]string)
	if model := aws.ToString(event.ResourceModel); model != "" {
		if err := flattenJSON(model, attrs); err != nil {
			return &engine.CreateResponse{ID: id}, fmt.Errorf("decoding resource model: %w", err)
		}
	}

	got, err := p.client.GetResource(ctx, &cc.GetResourceInput{
		TypeName:   aws.String(req.Type),
		Identifier: aws.String(id),
	})
	if err != nil {
		return &engine.CreateResponse{ID: id}, fmt.Errorf("reading %s %s: %w", req.Type, id, err)
	}
	if got.ResourceDescription != nil {
		if err := flattenJSON(aws.ToString(got.ResourceDescription.Properties), attrs); err != nil {
			return &engine.CreateResponse{ID: id}, fmt.Errorf("decoding properties: %w", err)
		}
	}

	return &engine.CreateResponse{ID: id, Attributes: attrs}, nil
}

// pendingIdentifier returns the identifier of a create request the caller
// stopped waiting for, or "" if Cloud Control has not assigned one. The
// lookup outlives ctx.
func (p *Provider) pendingIdentifier(ctx context.Context, event *types.ProgressEvent) string {
	if event == nil {
		return ""
	}
	if id := aws.ToString(event.Identifier); id != "" {
		return id
	}
	if event.RequestToken == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusTimeout)
	defer cancel()
	status, err := p.client.GetResourceRequestStatus(ctx, &cc.GetResourceRequestStatusInput{
		RequestToken: event.RequestToken,
	})
	if err != nil || status.ProgressEvent == nil {
		return ""
	}
	return aws.ToString(status.ProgressEvent.Identifier)
}

// Delete removes a resource. A resource that no longer exists counts as
// deleted.
func (p *Provider) Delete(ctx context.Context, req engine.DeleteRequest) error {
	out, err := p.client.DeleteResource(ctx, &cc.DeleteResourceInput{
		TypeName:   aws.String(req.Type),
		Identifier: aws.String(req.ID),
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	_, err = p.wait(ctx, out.ProgressEvent)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

func (p *Provider) wait(ctx context.Context, event *types.ProgressEvent) (*types.ProgressEvent, error) {
	if event == nil || event.RequestToken == nil {
		return nil, errors.New("cloud control returned no request token")
	}
	if event.OperationStatus == types.OperationStatusSuccess {
		return event, nil
	}

	waiter := cc.NewResourceRequestSuccessWaiter(p.client, p.waiterOptions...)
	status, err := waiter.WaitForOutput(ctx, &cc.GetResourceRequestStatusInput{
		RequestToken: event.RequestToken,
	}, p.maxWait)
	if err != nil {
		return nil, p.requestError(ctx, event.RequestToken, err)
	}
	return status.ProgressEvent, nil
}

// requestError replaces a generic waiter failure with the status message
// of the failed request when one is available.
func (p *Provider) requestError(ctx context.Context, token *string, waitErr error) error {
	status, err := p.client.GetResourceRequestStatus(ctx, &cc.GetResourceRequestStatusInput{RequestToken: token})
	if err != nil || status.ProgressEvent == nil {
		return waitErr
	}
	event := status.ProgressEvent
	if event.OperationStatus != types.OperationStatusFailed {
		return waitErr
	}
	return &RequestError{
		Code:    string(event.ErrorCode),
		Message: aws.ToString(event.StatusMessage),
	}
}

// RequestError is a failed Cloud Control request.
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("cloud control request failed (%s): %s", e.Code, e.Message)
}

func isNotFound(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code == string(types.HandlerErrorCodeNotFound)
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}
	return false
}

// flattenJSON decodes a resource model and adds its scalar values to attrs
// with nested keys joined by dots ("Endpoint.Address").
func flattenJSON(model string, attrs map[string]string) error {
	if model == "" {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(model), &decoded); err != nil {
		return err
	}
	flatten("", decoded, attrs)
	return nil
}

func flatten(prefix string, m map[string]any, attrs map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := m[k].(type) {
		case map[string]any:
			flatten(key, v, attrs)
		case string:
			attrs[key] = v
		case float64:
			attrs[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			attrs[key] = strconv.FormatBool(v)
		case []any:
			data, err := json.Marshal(v)
			if err == nil {
				attrs[key] = string(data)
			}
		}
	}
}

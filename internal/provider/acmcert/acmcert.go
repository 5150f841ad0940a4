// Package acmcert requests ACM certificates through the ACM API.
//
// AWS::CertificateManager::Certificate is not a Cloud Control resource, so
// the tls frontend's managed certificate is requested here. With DNS
// validation the request only finishes once the validation record exists;
// the record is logged as soon as ACM reports it.
package acmcert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/google/uuid"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

// ResourceType is the CloudFormation type handled by Provider.
const ResourceType = "AWS::CertificateManager::Certificate"

// DefaultMaxWait bounds how long Create waits for validation.
const DefaultMaxWait = 2 * time.Hour

// recordPolls bounds how often Create asks for the validation record
// before it starts waiting for validation.
const recordPolls = 10

// tokenNamespace scopes idempotency tokens so a retried request returns
// the same certificate.
var tokenNamespace = uuid.MustParse("3b0c9f6e-2d14-4a7b-b8e5-7f21c4d9a0e3")

// API is the subset of the ACM client used by Provider.
type API interface {
	acm.DescribeCertificateAPIClient
	RequestCertificate(ctx context.Context, in *acm.RequestCertificateInput, optFns ...func(*acm.Options)) (*acm.RequestCertificateOutput, error)
	DeleteCertificate(ctx context.Context, in *acm.DeleteCertificateInput, optFns ...func(*acm.Options)) (*acm.DeleteCertificateOutput, error)
}

// Provider implements engine.Provider for ACM certificates.
type Provider struct {
	client    API
	logger    *slog.Logger
	maxWait   time.Duration
	pollDelay time.Duration
	// waiterOptions are passed to every validation waiter.
	waiterOptions []func(*acm.CertificateValidatedWaiterOptions)
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger that receives validation records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithMaxWait overrides DefaultMaxWait.
func WithMaxWait(d time.Duration) Option {
	return func(p *Provider) {
		p.maxWait = d
	}
}

// WithPollDelay sets the delay between certificate polls.
func WithPollDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.pollDelay = d
		p.waiterOptions = append(p.waiterOptions, func(o *acm.CertificateValidatedWaiterOptions) {
			o.MinDelay = d
			o.MaxDelay = d
		})
	}
}

// New creates a provider from an AWS config.
func New(cfg aws.Config, opts ...Option) *Provider {
	return NewWithClient(acm.NewFromConfig(cfg), opts...)
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API, opts ...Option) *Provider {
	p := &Provider{
		client:    client,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxWait:   DefaultMaxWait,
		pollDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create requests a certificate and waits until ACM has issued it. The
// certificate ARN is the physical id.
func (p *Provider) Create(ctx context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	if req.Type != ResourceType {
		return nil, fmt.Errorf("acmcert: unsupported type %s", req.Type)
	}
	domain, _ := req.Properties["DomainName"].(string)
	if domain == "" {
		return nil, fmt.Errorf("%s: DomainName is required", req.URN)
	}
	method := types.ValidationMethodDns
	if m, _ := req.Properties["ValidationMethod"].(string); m != "" {
		method = types.ValidationMethod(m)
	}

	out, err := p.client.RequestCertificate(ctx, &acm.RequestCertificateInput{
		DomainName:              aws.String(domain),
		ValidationMethod:        method,
		SubjectAlternativeNames: stringList(req.Properties["SubjectAlternativeNames"]),
		IdempotencyToken:        aws.String(idempotencyToken(req.URN, domain)),
		Tags:                    tags(req.Properties["Tags"]),
	})
	if err != nil {
		return nil, fmt.Errorf("requesting certificate for %s: %w", domain, err)
	}
	arn := aws.ToString(out.CertificateArn)
	if arn == "" {
		return nil, fmt.Errorf("requesting certificate for %s: no ARN returned", domain)
	}
	resp := &engine.CreateResponse{ID: arn}

	if method == types.ValidationMethodDns {
		if err := p.logValidationRecords(ctx, arn); err != nil {
			return resp, err
		}
	}

	waiter := acm.NewCertificateValidatedWaiter(p.client, p.waiterOptions...)
	if err := waiter.Wait(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)}, p.maxWait); err != nil {
		return resp, fmt.Errorf("waiting for validation of %s: %w", arn, err)
	}
	return resp, nil
}

// logValidationRecords polls until ACM reports the DNS records that
// validate arn and logs them. Records that do not show up in time are
// not an error.
func (p *Provider) logValidationRecords(ctx context.Context, arn string) error {
	for range recordPolls {
		out, err := p.client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{CertificateArn: aws.String(arn)})
		if err != nil {
			return fmt.Errorf("describing %s: %w", arn, err)
		}
		if records := validationRecords(out.Certificate); len(records) > 0 {
			for _, r := range records {
				p.logger.Info("create this DNS record to validate the certificate",
					"certificate", arn,
					"name", aws.ToString(r.Name),
					"type", string(r.Type),
					"value", aws.ToString(r.Value))
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollDelay):
		}
	}
	p.logger.Warn("ACM reported no validation record yet", "certificate", arn)
	return nil
}

func validationRecords(cert *types.CertificateDetail) []*types.ResourceRecord {
	if cert == nil {
		return nil
	}
	var records []*types.ResourceRecord
	for _, opt := range cert.DomainValidationOptions {
		if opt.ResourceRecord != nil {
			records = append(records, opt.ResourceRecord)
		}
	}
	return records
}

// Delete removes a certificate. A certificate that no longer exists counts
// as deleted.
func (p *Provider) Delete(ctx context.Context, req engine.DeleteRequest) error {
	_, err := p.client.DeleteCertificate(ctx, &acm.DeleteCertificateInput{CertificateArn: aws.String(req.ID)})
	var notFound *types.ResourceNotFoundException
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("deleting certificate %s: %w", req.ID, err)
	}
	return nil
}

// idempotencyToken is at most 32 word characters, as ACM requires.
func idempotencyToken(urn, domain string) string {
	return strings.ReplaceAll(uuid.NewSHA1(tokenNamespace, []byte(urn+"\n"+domain)).String(), "-", "")
}

func stringList(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func tags(v any) []types.Tag {
	items, _ := v.([]any)
	var out []types.Tag
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		key, _ := m["Key"].(string)
		if key == "" {
			continue
		}
		value, _ := m["Value"].(string)
		out = append(out, types.Tag{Key: aws.String(key), Value: aws.String(value)})
	}
	return out
}

package hedgedoc

import (
	"errors"
	"fmt"
	"time"

	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/output"
	"github.com/lex00/hedgedoc-aws-go/resources/certificatemanager"
	"github.com/lex00/hedgedoc-aws-go/resources/cloudfront"
	elbv2 "github.com/lex00/hedgedoc-aws-go/resources/elasticloadbalancingv2"
	"github.com/lex00/hedgedoc-aws-go/resources/iam"
)

// TLSPolicy is the security policy of the HTTPS listener.
const TLSPolicy = "ELBSecurityPolicy-TLS13-1-2-2021-06"

// Frontend holds the public entry point resources. Which fields are set
// depends on the variant.
type Frontend struct {
	Variant string

	HTTPListener  *engine.Resource
	HTTPSListener *engine.Resource

	// Certificate is nil for an existing certificate ARN.
	Certificate    *engine.Resource
	CertificateArn output.Output[string]

	Distribution *engine.Resource
}

func (f *Frontend) listeners() []*engine.Resource {
	var ls []*engine.Resource
	for _, l := range []*engine.Resource{f.HTTPListener, f.HTTPSListener} {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return ls
}

func (b *builder) loadBalancer() error {
	s := b.stack

	var err error
	s.LoadBalancer, err = b.register("lb", &elbv2.LoadBalancer{
		Scheme:         "internet-facing",
		Type:           "application",
		Subnets:        s.Network.SubnetIDs(),
		SecurityGroups: intrinsics.Any(s.LBSecurityGroup.ID()),
		Tags:           intrinsics.Tags(b.name + "-lb"),
	})
	if err != nil {
		return err
	}

	s.TargetGroup, err = b.register("tg", &elbv2.TargetGroup{
		Port:            b.cfg.App.Port,
		Protocol:        "HTTP",
		TargetType:      "ip",
		VpcId:           s.Network.VPC.ID(),
		HealthCheckPath: "/status",
		Matcher:         &elbv2.TargetGroup_Matcher{HttpCode: "200"},
		Tags:            intrinsics.Tags(b.name + "-tg"),
	})
	return err
}

func (b *builder) frontend() error {
	switch b.cfg.Frontend {
	case config.FrontendCDN, "":
		return b.cdnFrontend()
	case config.FrontendTLS:
		return b.tlsFrontend()
	default:
		return fmt.Errorf("hedgedoc: unknown frontend %q", b.cfg.Frontend)
	}
}

// cdnFrontend serves plain HTTP from the load balancer and terminates TLS
// at CloudFront with its default certificate.
func (b *builder) cdnFrontend() error {
	s := b.stack
	f := &Frontend{Variant: config.FrontendCDN}
	s.Frontend = f

	var err error
	f.HTTPListener, err = b.register("lst", &elbv2.Listener{
		LoadBalancerArn: s.LoadBalancer.ID(),
		Port:            80,
		Protocol:        "HTTP",
		DefaultActions:  []elbv2.Listener_Action{elbv2.Forward(s.TargetGroup.ID())},
	})
	if err != nil {
		return err
	}

	originID := b.name + "-lb"
	f.Distribution, err = b.register("cdn", &cloudfront.Distribution{
		DistributionConfig: &cloudfront.Distribution_DistributionConfig{
			Comment:    b.name,
			Enabled:    intrinsics.BoolPtr(true),
			PriceClass: cloudfront.PriceClass100,
			Origins: []cloudfront.Distribution_Origin{{
				Id:         originID,
				DomainName: s.LoadBalancer.Attr(elbv2.AttrDNSName),
				CustomOriginConfig: &cloudfront.Distribution_CustomOriginConfig{
					// The load balancer only listens on HTTP in this variant.
					OriginProtocolPolicy: cloudfront.OriginHTTPOnly,
					HTTPPort:             intrinsics.IntPtr(80),
					HTTPSPort:            intrinsics.IntPtr(443),
					OriginSSLProtocols:   []string{"TLSv1.2"},
				},
			}},
			DefaultCacheBehavior: &cloudfront.Distribution_DefaultCacheBehavior{
				TargetOriginId:       originID,
				ViewerProtocolPolicy: cloudfront.ViewerRedirectToHTTPS,
				AllowedMethods:       []string{"GET", "HEAD", "OPTIONS", "PUT", "PATCH", "POST", "DELETE"},
				CachedMethods:        []string{"GET", "HEAD"},
				ForwardedValues: &cloudfront.Distribution_ForwardedValues{
					QueryString: intrinsics.BoolPtr(true),
					Headers:     []string{"*"},
					Cookies:     &cloudfront.Distribution_Cookies{Forward: "all"},
				},
				Compress: intrinsics.BoolPtr(true),
			},
			Restrictions: &cloudfront.Distribution_Restrictions{
				GeoRestriction: &cloudfront.Distribution_GeoRestriction{RestrictionType: "none"},
			},
			ViewerCertificate: &cloudfront.Distribution_ViewerCertificate{
				CloudFrontDefaultCertificate: intrinsics.BoolPtr(true),
			},
		},
		Tags: intrinsics.Tags(b.name + "-cdn"),
	}, engine.DependsOn(f.HTTPListener))
	if err != nil {
		return err
	}

	s.Hostname = f.Distribution.Attr(cloudfront.AttrDomainName)
	return nil
}

// tlsFrontend terminates TLS at the load balancer and redirects plain
// HTTP to HTTPS.
func (b *builder) tlsFrontend() error {
	s := b.stack
	f := &Frontend{Variant: config.FrontendTLS}
	s.Frontend = f

	if err := b.certificate(f); err != nil {
		return err
	}

	var err error
	f.HTTPSListener, err = b.register("https-lst", &elbv2.Listener{
		LoadBalancerArn: s.LoadBalancer.ID(),
		Port:            443,
		Protocol:        "HTTPS",
		SslPolicy:       TLSPolicy,
		Certificates:    []elbv2.Listener_Certificate{{CertificateArn: f.CertificateArn}},
		DefaultActions:  []elbv2.Listener_Action{elbv2.Forward(s.TargetGroup.ID())},
	})
	if err != nil {
		return err
	}

	f.HTTPListener, err = b.register("http-lst", &elbv2.Listener{
		LoadBalancerArn: s.LoadBalancer.ID(),
		Port:            80,
		Protocol:        "HTTP",
		DefaultActions:  []elbv2.Listener_Action{elbv2.RedirectToHTTPS()},
	})
	if err != nil {
		return err
	}

	if domain := b.cfg.TLS.Domain; domain != "" {
		s.Hostname = output.Val(domain)
	} else {
		s.Hostname = s.LoadBalancer.Attr(elbv2.AttrDNSName)
	}
	return nil
}

var errNoCertificate = errors.New("hedgedoc: certificate generator returned no certificate")

func (b *builder) certificate(f *Frontend) error {
	tls := b.cfg.TLS

	switch tls.Certificate {
	case config.CertificateARN:
		if tls.CertificateARN == "" {
			return fmt.Errorf("%w: tls.certificate_arn", config.ErrMissingValue)
		}
		f.CertificateArn = output.Val(tls.CertificateARN)
		return nil

	case config.CertificateACM:
		if tls.Domain == "" {
			return fmt.Errorf("%w: tls.domain", config.ErrMissingValue)
		}
		cert, err := b.register("cert", &certificatemanager.Certificate{
			DomainName:       tls.Domain,
			ValidationMethod: "DNS",
			Tags:             intrinsics.Tags(b.name + "-cert"),
		})
		if err != nil {
			return err
		}
		f.Certificate = cert
		f.CertificateArn = cert.ID()
		return nil

	case config.CertificateSelfSigned, "":
		commonName := tls.Domain
		if commonName == "" {
			commonName = b.name
		}
		generated, err := b.opts.certificate(commonName, nil)
		if err != nil {
			return fmt.Errorf("generating certificate for %s: %w", commonName, err)
		}
		if generated == nil {
			return errNoCertificate
		}
		b.d.Logger().Debug("generated self-signed certificate",
			"common_name", commonName,
			"valid_for", time.Until(generated.NotAfter).Round(time.Hour))

		cert, err := b.register("cert", &iam.ServerCertificate{
			CertificateBody: generated.CertificatePEM,
			PrivateKey:      output.SecretVal(generated.PrivateKeyPEM),
			Path:            "/hedgedoc/",
			Tags:            intrinsics.Tags(b.name + "-cert"),
		})
		if err != nil {
			return err
		}
		f.Certificate = cert
		f.CertificateArn = cert.Attr(iam.AttrArn)
		return nil

	default:
		return fmt.Errorf("hedgedoc: unknown certificate source %q", tls.Certificate)
	}
}

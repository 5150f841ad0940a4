// Package cloudfront contains CloudFormation AWS::CloudFront resource
// descriptors.
package cloudfront

// Attribute names reported for CloudFront resources.
const (
	AttrDomainName = "DomainName"
	AttrId         = "Id"
)

// Viewer protocol and origin protocol policies.
const (
	ViewerRedirectToHTTPS = "redirect-to-https"
	OriginHTTPOnly        = "http-only"
	PriceClass100         = "PriceClass_100"
)

// Distribution represents AWS::CloudFront::Distribution.
type Distribution struct {
	DistributionConfig *Distribution_DistributionConfig
	Tags               []any
}

// ResourceType returns the CloudFormation type.
func (Distribution) ResourceType() string { return "AWS::CloudFront::Distribution" }

// Distribution_DistributionConfig is the distribution body.
type Distribution_DistributionConfig struct {
	Comment              string
	Enabled              *bool
	PriceClass           string
	Origins              []Distribution_Origin
	DefaultCacheBehavior *Distribution_DefaultCacheBehavior
	Restrictions         *Distribution_Restrictions
	ViewerCertificate    *Distribution_ViewerCertificate
}

// Distribution_Origin is a distribution origin.
type Distribution_Origin struct {
	Id                 string
	DomainName         any
	CustomOriginConfig *Distribution_CustomOriginConfig
}

// Distribution_CustomOriginConfig describes a non-S3 origin.
type Distribution_CustomOriginConfig struct {
	HTTPPort             *int
	HTTPSPort            *int
	OriginProtocolPolicy string
	OriginSSLProtocols   []string
}

// Distribution_DefaultCacheBehavior is the catch-all cache behavior.
type Distribution_DefaultCacheBehavior struct {
	TargetOriginId       string
	ViewerProtocolPolicy string
	AllowedMethods       []string
	CachedMethods        []string
	ForwardedValues      *Distribution_ForwardedValues
	Compress             *bool
}

// Distribution_ForwardedValues selects what is forwarded to the origin.
type Distribution_ForwardedValues struct {
	QueryString *bool
	Headers     []string
	Cookies     *Distribution_Cookies
}

// Distribution_Cookies selects forwarded cookies.
type Distribution_Cookies struct {
	Forward string
}

// Distribution_Restrictions wraps the geo restriction.
type Distribution_Restrictions struct {
	GeoRestriction *Distribution_GeoRestriction
}

// Distribution_GeoRestriction restricts viewers by country.
type Distribution_GeoRestriction struct {
	RestrictionType string
}

// Distribution_ViewerCertificate selects the viewer TLS certificate.
type Distribution_ViewerCertificate struct {
	CloudFrontDefaultCertificate *bool
}

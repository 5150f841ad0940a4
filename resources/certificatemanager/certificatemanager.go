// Package certificatemanager contains CloudFormation
// AWS::CertificateManager resource descriptors.
package certificatemanager

// Certificate represents AWS::CertificateManager::Certificate.
// The resource's Ref is its ARN; it reports no other attributes.
type Certificate struct {
	DomainName       any
	ValidationMethod string
	Tags             []any
}

// ResourceType returns the CloudFormation type.
func (Certificate) ResourceType() string { return "AWS::CertificateManager::Certificate" }

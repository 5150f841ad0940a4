// Package elasticloadbalancingv2 contains CloudFormation
// AWS::ElasticLoadBalancingV2 resource descriptors.
package elasticloadbalancingv2

// Attribute names reported for load balancing resources.
const (
	AttrDNSName         = "DNSName"
	AttrLoadBalancerArn = "LoadBalancerArn"
	AttrTargetGroupArn  = "TargetGroupArn"
	AttrListenerArn     = "ListenerArn"
)

// Action types.
const (
	ActionForward  = "forward"
	ActionRedirect = "redirect"
)

// LoadBalancer represents AWS::ElasticLoadBalancingV2::LoadBalancer.
type LoadBalancer struct {
	Name           any
	Scheme         string
	Type           string
	Subnets        []any
	SecurityGroups []any
	Tags           []any
}

// ResourceType returns the CloudFormation type.
func (LoadBalancer) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::LoadBalancer"
}

// TargetGroup represents AWS::ElasticLoadBalancingV2::TargetGroup.
type TargetGroup struct {
	Name                any
	Port                int
	Protocol            string
	TargetType          string
	VpcId               any
	HealthCheckPath     string
	HealthCheckProtocol string
	Matcher             *TargetGroup_Matcher
	Tags                []any
}

// ResourceType returns the CloudFormation type.
func (TargetGroup) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::TargetGroup"
}

// TargetGroup_Matcher lists the HTTP codes that count as healthy.
type TargetGroup_Matcher struct {
	HttpCode string
}

// Listener represents AWS::ElasticLoadBalancingV2::Listener.
type Listener struct {
	LoadBalancerArn any
	Port            int
	Protocol        string
	SslPolicy       string
	Certificates    []Listener_Certificate
	DefaultActions  []Listener_Action
}

// ResourceType returns the CloudFormation type.
func (Listener) ResourceType() string {
	return "AWS::ElasticLoadBalancingV2::Listener"
}

// Listener_Certificate references a server certificate.
type Listener_Certificate struct {
	CertificateArn any
}

// Listener_Action is a listener default action.
type Listener_Action struct {
	Type           string
	TargetGroupArn any
	RedirectConfig *Listener_RedirectConfig
}

// Listener_RedirectConfig describes a redirect action.
type Listener_RedirectConfig struct {
	Protocol   string
	Port       string
	Host       string
	Path       string
	Query      string
	StatusCode string
}

// Forward returns a forward action to the given target group.
func Forward(targetGroupArn any) Listener_Action {
	return Listener_Action{Type: ActionForward, TargetGroupArn: targetGroupArn}
}

// RedirectToHTTPS returns a permanent redirect to the same URL over HTTPS.
func RedirectToHTTPS() Listener_Action {
	return Listener_Action{
		Type: ActionRedirect,
		RedirectConfig: &Listener_RedirectConfig{
			Protocol:   "HTTPS",
			Port:       "443",
			Host:       "#{host}",
			Path:       "/#{path}",
			Query:      "#{query}",
			StatusCode: "HTTP_301",
		},
	}
}

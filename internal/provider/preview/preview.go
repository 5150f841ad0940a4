// Package preview implements an offline provider that pretends to create
// resources. Identifiers and attributes are derived from the resource URN,
// so the same definition always previews to the same plan.
package preview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lex00/hedgedoc-aws-go/internal/engine"
)

// AccountID is the account used in previewed ARNs.
const AccountID = "123456789012"

// namespace scopes the name-based UUIDs of previewed resources.
var namespace = uuid.MustParse("6f1c2f0e-5a8b-4d8e-9a43-1d3f0b2c7e55")

// Provider records created resources in memory.
type Provider struct {
	region string

	mu      sync.Mutex
	created map[string]engine.CreateRequest
}

// New returns a preview provider for region.
func New(region string) *Provider {
	if region == "" {
		region = "us-east-1"
	}
	return &Provider{region: region, created: make(map[string]engine.CreateRequest)}
}

// Create returns a deterministic id and attributes for req.
func (p *Provider) Create(ctx context.Context, req engine.CreateRequest) (*engine.CreateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.created[req.URN] = req
	p.mu.Unlock()

	hash := strings.ReplaceAll(uuid.NewSHA1(namespace, []byte(req.URN)).String(), "-", "")
	id, attrs := p.describe(req, hash)
	return &engine.CreateResponse{ID: id, Attributes: attrs}, nil
}

// Delete forgets the resource.
func (p *Provider) Delete(_ context.Context, req engine.DeleteRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.created, req.URN)
	return nil
}

// Created returns the request a resource was created with.
func (p *Provider) Created(urn string) (engine.CreateRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	req, ok := p.created[urn]
	return req, ok
}

// Count returns the number of resources currently held.
func (p *Provider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.created)
}

func (p *Provider) arn(service, resource string) string {
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s", service, p.region, AccountID, resource)
}

func globalARN(service, resource string) string {
	return fmt.Sprintf("arn:aws:%s::%s:%s", service, AccountID, resource)
}

func prop(req engine.CreateRequest, name string) string {
	if v, ok := req.Properties[name]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func (p *Provider) describe(req engine.CreateRequest, hash string) (string, map[string]string) {
	name := strings.ToLower(req.LogicalID)
	short := hash[:8]

	switch req.Type {
	case "AWS::EC2::VPC":
		id := "vpc-" + hash[:17]
		return id, map[string]string{
			"VpcId":                id,
			"CidrBlock":            prop(req, "CidrBlock"),
			"DefaultSecurityGroup": "sg-" + hash[15:32],
		}
	case "AWS::EC2::Subnet":
		id := "subnet-" + hash[:17]
		return id, map[string]string{
			"SubnetId":         id,
			"AvailabilityZone": prop(req, "AvailabilityZone"),
			"VpcId":            prop(req, "VpcId"),
		}
	case "AWS::EC2::SecurityGroup":
		id := "sg-" + hash[:17]
		return id, map[string]string{"GroupId": id, "VpcId": prop(req, "VpcId")}
	case "AWS::EC2::InternetGateway":
		id := "igw-" + hash[:17]
		return id, map[string]string{"InternetGatewayId": id}
	case "AWS::EC2::RouteTable":
		id := "rtb-" + hash[:17]
		return id, map[string]string{"RouteTableId": id}
	case "AWS::EC2::SubnetRouteTableAssociation":
		id := "rtbassoc-" + hash[:17]
		return id, map[string]string{"Id": id}
	case "AWS::EC2::Route":
		return prop(req, "RouteTableId") + "|" + prop(req, "DestinationCidrBlock"), map[string]string{}
	case "AWS::EC2::VPCGatewayAttachment":
		return "IGW|" + prop(req, "VpcId"), map[string]string{}

	case "AWS::RDS::DBSubnetGroup":
		return name, map[string]string{}
	case "AWS::RDS::DBInstance":
		return name, map[string]string{
			"Endpoint.Address": fmt.Sprintf("%s.%s.%s.rds.amazonaws.com", name, hash[:12], p.region),
			"Endpoint.Port":    "5432",
			"DBInstanceArn":    p.arn("rds", "db:"+name),
		}

	case "AWS::ECS::Cluster":
		arn := p.arn("ecs", "cluster/"+name)
		return name, map[string]string{"Arn": arn}
	case "AWS::ECS::TaskDefinition":
		arn := p.arn("ecs", "task-definition/"+name+":1")
		return arn, map[string]string{"TaskDefinitionArn": arn}
	case "AWS::ECS::Service":
		arn := p.arn("ecs", "service/"+name)
		return arn, map[string]string{"ServiceArn": arn, "Name": name}

	case "AWS::ElasticLoadBalancingV2::LoadBalancer":
		arn := p.arn("elasticloadbalancing", "loadbalancer/app/"+short+"/"+hash[8:24])
		return arn, map[string]string{
			"LoadBalancerArn":  arn,
			"DNSName":          fmt.Sprintf("%s-%d.%s.elb.amazonaws.com", short, hashNumber(hash), p.region),
			"LoadBalancerName": short,
		}
	case "AWS::ElasticLoadBalancingV2::TargetGroup":
		arn := p.arn("elasticloadbalancing", "targetgroup/"+short+"/"+hash[8:24])
		return arn, map[string]string{"TargetGroupArn": arn}
	case "AWS::ElasticLoadBalancingV2::Listener":
		arn := p.arn("elasticloadbalancing", "listener/app/"+short+"/"+hash[8:24])
		return arn, map[string]string{"ListenerArn": arn}

	case "AWS::CloudFront::Distribution":
		id := "E" + strings.ToUpper(hash[:13])
		return id, map[string]string{
			"Id":         id,
			"DomainName": "d" + hash[:13] + ".cloudfront.net",
		}

	case "AWS::S3::Bucket":
		bucket := name + "-" + short
		return bucket, map[string]string{
			"Arn":                "arn:aws:s3:::" + bucket,
			"DomainName":         bucket + ".s3.amazonaws.com",
			"RegionalDomainName": fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, p.region),
		}
	case "AWS::S3::BucketPolicy":
		return prop(req, "Bucket"), map[string]string{}

	case "AWS::IAM::User":
		user := req.LogicalID + "-" + strings.ToUpper(short)
		return user, map[string]string{"Arn": globalARN("iam", "user"+iamPath(req)+user)}
	case "AWS::IAM::UserPolicy":
		return "UserPolicy-" + short, map[string]string{}
	case "AWS::IAM::AccessKey":
		id := "AKIA" + strings.ToUpper(hash[:16])
		return id, map[string]string{"SecretAccessKey": hash + strings.ToUpper(hash[:8])}
	case "AWS::IAM::Role":
		role := req.LogicalID + "-" + strings.ToUpper(short)
		return role, map[string]string{
			"Arn":    globalARN("iam", "role"+iamPath(req)+role),
			"RoleId": "AROA" + strings.ToUpper(hash[:17]),
		}
	case "AWS::IAM::ServerCertificate":
		certName := req.LogicalID + "-" + strings.ToUpper(short)
		return certName, map[string]string{"Arn": globalARN("iam", "server-certificate"+iamPath(req)+certName)}

	case "AWS::CertificateManager::Certificate":
		return p.arn("acm", "certificate/"+uuid.NewSHA1(namespace, []byte(req.URN)).String()), map[string]string{}

	case "AWS::Logs::LogGroup":
		group := prop(req, "LogGroupName")
		if group == "" {
			group = name + "-" + short
		}
		return group, map[string]string{"Arn": p.arn("logs", "log-group:"+group+":*")}
	}

	return req.LogicalID + "-" + short, map[string]string{}
}

func iamPath(req engine.CreateRequest) string {
	if path := prop(req, "Path"); path != "" {
		return path
	}
	return "/"
}

func hashNumber(hash string) int {
	n := 0
	for _, c := range hash[:9] {
		n = (n*31 + int(c)) % 1000000000
	}
	return n
}

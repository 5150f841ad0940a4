// Package ec2 contains CloudFormation AWS::EC2 resource descriptors.
//
// Fields typed any accept literal values or deferred values from
// github.com/lex00/hedgedoc-aws-go/output.
package ec2

// Attribute names reported for EC2 resources.
const (
	AttrVpcId     = "VpcId"
	AttrCidrBlock = "CidrBlock"
	AttrGroupId   = "GroupId"
	AttrSubnetId  = "SubnetId"
)

// VPC represents AWS::EC2::VPC.
type VPC struct {
	CidrBlock          any
	EnableDnsHostnames *bool
	EnableDnsSupport   *bool
	InstanceTenancy    string
	Tags               []any
}

// ResourceType returns the CloudFormation type.
func (VPC) ResourceType() string { return "AWS::EC2::VPC" }

// InternetGateway represents AWS::EC2::InternetGateway.
type InternetGateway struct {
	Tags []any
}

// ResourceType returns the CloudFormation type.
func (InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// VPCGatewayAttachment represents AWS::EC2::VPCGatewayAttachment.
type VPCGatewayAttachment struct {
	InternetGatewayId any
	VpcId             any
}

// ResourceType returns the CloudFormation type.
func (VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }

// RouteTable represents AWS::EC2::RouteTable.
type RouteTable struct {
	VpcId any
	Tags  []any
}

// ResourceType returns the CloudFormation type.
func (RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// Route represents AWS::EC2::Route.
type Route struct {
	RouteTableId         any
	DestinationCidrBlock string
	GatewayId            any
}

// ResourceType returns the CloudFormation type.
func (Route) ResourceType() string { return "AWS::EC2::Route" }

// Subnet represents AWS::EC2::Subnet.
type Subnet struct {
	VpcId                       any
	CidrBlock                   any
	AvailabilityZone            any
	AssignIpv6AddressOnCreation *bool
	MapPublicIpOnLaunch         *bool
	Tags                        []any
}

// ResourceType returns the CloudFormation type.
func (Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// SubnetRouteTableAssociation represents AWS::EC2::SubnetRouteTableAssociation.
type SubnetRouteTableAssociation struct {
	RouteTableId any
	SubnetId     any
}

// ResourceType returns the CloudFormation type.
func (SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// SecurityGroup represents AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupDescription     string
	GroupName            any
	VpcId                any
	SecurityGroupIngress []SecurityGroup_Ingress
	SecurityGroupEgress  []SecurityGroup_Egress
	Tags                 []any
}

// ResourceType returns the CloudFormation type.
func (SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// SecurityGroup_Ingress is an inline ingress rule.
type SecurityGroup_Ingress struct {
	Description           string
	IpProtocol            string
	FromPort              *int
	ToPort                *int
	CidrIp                string
	SourceSecurityGroupId any
}

// SecurityGroup_Egress is an inline egress rule.
type SecurityGroup_Egress struct {
	Description string
	IpProtocol  string
	FromPort    *int
	ToPort      *int
	CidrIp      string
}

// AllTraffic is the protocol value matching every protocol and port.
const AllTraffic = "-1"

// AnyIPv4 is the CIDR covering every IPv4 address.
const AnyIPv4 = "0.0.0.0/0"

// TCPIngress returns an ingress rule for a single TCP port from a CIDR.
func TCPIngress(description string, port int, cidr string) SecurityGroup_Ingress {
	return SecurityGroup_Ingress{
		Description: description,
		IpProtocol:  "tcp",
		FromPort:    &port,
		ToPort:      &port,
		CidrIp:      cidr,
	}
}

// TCPIngressFromGroup returns an ingress rule for a single TCP port from
// another security group.
func TCPIngressFromGroup(description string, port int, groupID any) SecurityGroup_Ingress {
	return SecurityGroup_Ingress{
		Description:           description,
		IpProtocol:            "tcp",
		FromPort:              &port,
		ToPort:                &port,
		SourceSecurityGroupId: groupID,
	}
}

// AllEgress returns an egress rule allowing all outbound traffic.
func AllEgress() SecurityGroup_Egress {
	zero := 0
	return SecurityGroup_Egress{
		Description: "Allow all outbound",
		IpProtocol:  AllTraffic,
		FromPort:    &zero,
		ToPort:      &zero,
		CidrIp:      AnyIPv4,
	}
}

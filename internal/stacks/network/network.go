// Package network composes the VPC a HedgeDoc stack runs in: one VPC, an
// internet gateway with a default route, and one public subnet per
// selected availability zone.
package network

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/internal/zones"
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/resources/ec2"
)

// ComponentType is the component type of every network.
const ComponentType = "hedgedoc:network:Network"

// PostgresPort is opened by the database security group.
const PostgresPort = 5432

// ErrInvalidCIDR is returned for address blocks subnets cannot be carved
// from.
var ErrInvalidCIDR = errors.New("network: invalid CIDR block")

// Args configures a network.
type Args struct {
	CIDRBlock          string
	InstanceTenancy    string
	EnableDNSHostnames bool
	EnableDNSSupport   bool
	ZoneCount          int
}

// DefaultArgs returns a 10.100.0.0/16 network spanning two zones.
func DefaultArgs() Args {
	return Args{
		CIDRBlock:       "10.100.0.0/16",
		InstanceTenancy: "default",
		ZoneCount:       2,
	}
}

// ArgsFromConfig converts the network section of the stack file.
func ArgsFromConfig(c config.Network) Args {
	return Args{
		CIDRBlock:          c.CIDRBlock,
		InstanceTenancy:    c.InstanceTenancy,
		EnableDNSHostnames: c.EnableDNSHostnames,
		EnableDNSSupport:   c.EnableDNSSupport,
		ZoneCount:          c.ZoneCount,
	}
}

// Network holds the registered network resources.
type Network struct {
	Component         *engine.Component
	VPC               *engine.Resource
	InternetGateway   *engine.Resource
	GatewayAttachment *engine.Resource
	RouteTable        *engine.Resource
	DefaultRoute      *engine.Resource
	Zones             []string
	Subnets           []*engine.Resource
	Associations      []*engine.Resource
	DBSecurityGroup   *engine.Resource
}

// New registers a network whose resources are prefixed with name. The
// component itself is named "<name>-network". New blocks only for the zone
// lookup; resource creation proceeds in the background.
func New(ctx context.Context, d *engine.Deployment, name string, args Args, zl zones.Lister, opts ...engine.Option) (*Network, error) {
	if args.ZoneCount == 0 {
		args.ZoneCount = DefaultArgs().ZoneCount
	}
	if args.InstanceTenancy == "" {
		args.InstanceTenancy = "default"
	}
	// Reject a bad block before asking for zones.
	if _, err := SubnetCIDRs(args.CIDRBlock, args.ZoneCount); err != nil {
		return nil, err
	}

	selected, err := zones.Select(ctx, zl, args.ZoneCount)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}
	cidrs, err := SubnetCIDRs(args.CIDRBlock, len(selected))
	if err != nil {
		return nil, err
	}

	comp, err := d.RegisterComponent(ComponentType, name+"-network", opts...)
	if err != nil {
		return nil, err
	}
	n := &Network{Component: comp, Zones: selected}
	parent := engine.Parent(comp)

	n.VPC, err = d.RegisterResource(name+"-vpc", &ec2.VPC{
		CidrBlock:          args.CIDRBlock,
		InstanceTenancy:    args.InstanceTenancy,
		EnableDnsHostnames: intrinsics.BoolPtr(args.EnableDNSHostnames),
		EnableDnsSupport:   intrinsics.BoolPtr(args.EnableDNSSupport),
		Tags:               intrinsics.Tags(name + "-vpc"),
	}, parent)
	if err != nil {
		return nil, err
	}

	n.InternetGateway, err = d.RegisterResource(name+"-igw", &ec2.InternetGateway{
		Tags: intrinsics.Tags(name + "-igw"),
	}, parent)
	if err != nil {
		return nil, err
	}

	n.GatewayAttachment, err = d.RegisterResource(name+"-igw-attachment", &ec2.VPCGatewayAttachment{
		InternetGatewayId: n.InternetGateway.ID(),
		VpcId:             n.VPC.ID(),
	}, parent)
	if err != nil {
		return nil, err
	}

	n.RouteTable, err = d.RegisterResource(name+"-rt", &ec2.RouteTable{
		VpcId: n.VPC.ID(),
		Tags:  intrinsics.Tags(name + "-rt"),
	}, parent)
	if err != nil {
		return nil, err
	}

	// A route to the gateway is only valid once it is attached.
	n.DefaultRoute, err = d.RegisterResource(name+"-default-route", &ec2.Route{
		RouteTableId:         n.RouteTable.ID(),
		DestinationCidrBlock: ec2.AnyIPv4,
		GatewayId:            n.InternetGateway.ID(),
	}, parent, engine.DependsOn(n.GatewayAttachment))
	if err != nil {
		return nil, err
	}

	for i, zone := range selected {
		subnetName := name + "-subnet-" + zone
		subnet, err := d.RegisterResource(subnetName, &ec2.Subnet{
			VpcId:                       n.VPC.ID(),
			CidrBlock:                   cidrs[i],
			AvailabilityZone:            zone,
			AssignIpv6AddressOnCreation: intrinsics.BoolPtr(false),
			MapPublicIpOnLaunch:         intrinsics.BoolPtr(false),
			Tags:                        intrinsics.Tags(subnetName),
		}, parent)
		if err != nil {
			return nil, err
		}
		assoc, err := d.RegisterResource(name+"-rta-"+zone, &ec2.SubnetRouteTableAssociation{
			RouteTableId: n.RouteTable.ID(),
			SubnetId:     subnet.ID(),
		}, parent)
		if err != nil {
			return nil, err
		}
		n.Subnets = append(n.Subnets, subnet)
		n.Associations = append(n.Associations, assoc)
	}

	// Open to any address. The application stack registers its own
	// database group restricted to the service.
	n.DBSecurityGroup, err = d.RegisterResource(name+"-rds-sg", &ec2.SecurityGroup{
		GroupDescription:     "Allow client access.",
		VpcId:                n.VPC.ID(),
		SecurityGroupIngress: []ec2.SecurityGroup_Ingress{ec2.TCPIngress("Allow rds access.", PostgresPort, ec2.AnyIPv4)},
		SecurityGroupEgress:  []ec2.SecurityGroup_Egress{ec2.AllEgress()},
		Tags:                 intrinsics.Tags(name + "-rds-sg"),
	}, parent)
	if err != nil {
		return nil, err
	}

	d.Logger().Debug("registered network", "name", name, "zones", selected)
	return n, nil
}

// SubnetIDs returns the subnet ids as property values.
func (n *Network) SubnetIDs() []any {
	ids := make([]any, len(n.Subnets))
	for i, s := range n.Subnets {
		ids[i] = s.ID()
	}
	return ids
}

// SubnetCIDRs carves count consecutive /24 blocks from block, starting at
// its first address: 10.100.0.0/16 yields 10.100.0.0/24, 10.100.1.0/24 and
// so on.
func SubnetCIDRs(block string, count int) ([]string, error) {
	prefix, err := netip.ParsePrefix(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCIDR, block, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("%w: %q is not IPv4", ErrInvalidCIDR, block)
	}
	if prefix.Bits() > 24 {
		return nil, fmt.Errorf("%w: %q is smaller than a /24", ErrInvalidCIDR, block)
	}
	if available := 1 << (24 - prefix.Bits()); count > available {
		return nil, fmt.Errorf("%w: %q holds %d /24 subnets, need %d", ErrInvalidCIDR, block, available, count)
	}

	base := prefix.Masked().Addr().As4()
	start := uint32(base[0])<<24 | uint32(base[1])<<16 | uint32(base[2])<<8
	cidrs := make([]string, count)
	for i := range count {
		v := start + uint32(i)<<8
		addr := netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), 0})
		cidrs[i] = netip.PrefixFrom(addr, 24).String()
	}
	return cidrs, nil
}

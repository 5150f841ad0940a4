// Package hedgedoc composes a complete HedgeDoc deployment: network,
// PostgreSQL database, ECS Fargate service behind an application load
// balancer, an S3 bucket for uploads with a dedicated IAM user, and a
// public frontend (CloudFront or TLS at the load balancer).
package hedgedoc

import (
	"context"
	"fmt"
	"sync"

	"github.com/lex00/hedgedoc-aws-go/internal/certs"
	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/internal/stacks/network"
	"github.com/lex00/hedgedoc-aws-go/internal/zones"
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/output"
	"github.com/lex00/hedgedoc-aws-go/resources/ec2"
	"github.com/lex00/hedgedoc-aws-go/resources/ecs"
	"github.com/lex00/hedgedoc-aws-go/resources/iam"
	"github.com/lex00/hedgedoc-aws-go/resources/logs"
	"github.com/lex00/hedgedoc-aws-go/resources/rds"
)

// ComponentType is the component type of a HedgeDoc deployment.
const ComponentType = "hedgedoc:app:HedgeDoc"

// DefaultName is the logical name used when none is configured.
const DefaultName = "hedgedoc1"

// HostnameOutput is the name of the exported public hostname.
const HostnameOutput = "Hostname"

// ContainerName is the name of the HedgeDoc container in the task.
const ContainerName = "hedgedoc"

// CertificateGenerator creates the certificate for the self-signed tls
// frontend.
type CertificateGenerator func(commonName string, dnsNames []string) (*certs.Certificate, error)

// Option configures New.
type Option func(*options)

type options struct {
	parent      *engine.Component
	certificate CertificateGenerator
}

// WithParent places the deployment under c instead of the stack root.
func WithParent(c *engine.Component) Option {
	return func(o *options) {
		o.parent = c
	}
}

// WithCertificateGenerator replaces the self-signed certificate generator.
func WithCertificateGenerator(fn CertificateGenerator) Option {
	return func(o *options) {
		o.certificate = fn
	}
}

func selfSigned(commonName string, dnsNames []string) (*certs.Certificate, error) {
	return certs.SelfSigned(commonName, dnsNames, certs.DefaultValidity)
}

// Stack holds the registered resources of one deployment.
type Stack struct {
	Name      string
	Component *engine.Component
	Network   *network.Network

	DBSubnetGroup   *engine.Resource
	DBSecurityGroup *engine.Resource
	Database        *engine.Resource

	Cluster       *engine.Resource
	LogGroup      *engine.Resource
	ExecutionRole *engine.Resource

	LBSecurityGroup      *engine.Resource
	ServiceSecurityGroup *engine.Resource
	LoadBalancer         *engine.Resource
	TargetGroup          *engine.Resource
	Frontend             *Frontend

	Bucket       *engine.Resource
	User         *engine.Resource
	UserPolicy   *engine.Resource
	AccessKey    *engine.Resource
	BucketPolicy *engine.Resource

	// Hostname is the externally reachable host name.
	Hostname output.Output[string]

	mu             sync.Mutex
	taskDefinition *engine.Resource
	service        *engine.Resource
	environment    []ecs.TaskDefinition_KeyValuePair
}

// TaskDefinition returns the task definition, or nil until the deferred
// step that registers it has run.
func (s *Stack) TaskDefinition() *engine.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskDefinition
}

// Service returns the ECS service, or nil until the deferred step that
// registers it has run.
func (s *Stack) Service() *engine.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service
}

// Environment returns the container environment once it has been built.
func (s *Stack) Environment() []ecs.TaskDefinition_KeyValuePair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ecs.TaskDefinition_KeyValuePair(nil), s.environment...)
}

// New registers a HedgeDoc deployment. It blocks only for the zone lookup
// of the network; everything else is created in the background and the
// ECS service is registered once its environment can be resolved.
func New(ctx context.Context, d *engine.Deployment, cfg *config.Config, zl zones.Lister, opts ...Option) (*Stack, error) {
	o := options{certificate: selfSigned}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region", config.ErrMissingValue)
	}
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}

	var compOpts []engine.Option
	if o.parent != nil {
		compOpts = append(compOpts, engine.Parent(o.parent))
	}
	comp, err := d.RegisterComponent(ComponentType, name, compOpts...)
	if err != nil {
		return nil, err
	}
	s := &Stack{Name: name, Component: comp}
	b := &builder{d: d, cfg: cfg, name: name, stack: s, opts: o, parent: engine.Parent(comp)}

	s.Network, err = network.New(ctx, d, name, network.ArgsFromConfig(cfg.Network), zl, engine.Parent(comp))
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		b.securityGroups,
		b.database,
		b.cluster,
		b.loadBalancer,
		b.frontend,
		b.storage,
		b.service,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	d.Export(HostnameOutput, "Public hostname of the HedgeDoc service", s.Hostname)
	return s, nil
}

// builder carries the shared state of one New call.
type builder struct {
	d      *engine.Deployment
	cfg    *config.Config
	name   string
	stack  *Stack
	opts   options
	parent engine.Option
}

func (b *builder) register(suffix string, props interface{ ResourceType() string }, opts ...engine.Option) (*engine.Resource, error) {
	return b.d.RegisterResource(b.name+"-"+suffix, props, append([]engine.Option{b.parent}, opts...)...)
}

func (b *builder) tls() bool {
	return b.cfg.Frontend == config.FrontendTLS
}

func (b *builder) securityGroups() error {
	s := b.stack
	vpcID := s.Network.VPC.ID()

	ingress := []ec2.SecurityGroup_Ingress{ec2.TCPIngress("Allow http access", 80, ec2.AnyIPv4)}
	if b.tls() {
		ingress = append(ingress, ec2.TCPIngress("Allow https", 443, ec2.AnyIPv4))
	}
	var err error
	s.LBSecurityGroup, err = b.register("lb-sg", &ec2.SecurityGroup{
		GroupDescription:     "Allow all HTTP(s) traffic.",
		VpcId:                vpcID,
		SecurityGroupIngress: ingress,
		SecurityGroupEgress:  []ec2.SecurityGroup_Egress{ec2.AllEgress()},
		Tags:                 intrinsics.Tags(b.name + "-lb-sg"),
	})
	if err != nil {
		return err
	}

	s.ServiceSecurityGroup, err = b.register("svc-sg", &ec2.SecurityGroup{
		GroupDescription: "Allow traffic from the load balancer.",
		VpcId:            vpcID,
		SecurityGroupIngress: []ec2.SecurityGroup_Ingress{
			ec2.TCPIngressFromGroup("Allow load balancer", b.cfg.App.Port, s.LBSecurityGroup.ID()),
		},
		SecurityGroupEgress: []ec2.SecurityGroup_Egress{ec2.AllEgress()},
		Tags:                intrinsics.Tags(b.name + "-svc-sg"),
	})
	if err != nil {
		return err
	}

	s.DBSecurityGroup, err = b.register("db-sg", &ec2.SecurityGroup{
		GroupDescription: "Allow database access from the service.",
		VpcId:            vpcID,
		SecurityGroupIngress: []ec2.SecurityGroup_Ingress{
			ec2.TCPIngressFromGroup("Allow rds access.", network.PostgresPort, s.ServiceSecurityGroup.ID()),
		},
		SecurityGroupEgress: []ec2.SecurityGroup_Egress{ec2.AllEgress()},
		Tags:                intrinsics.Tags(b.name + "-db-sg"),
	})
	return err
}

func (b *builder) database() error {
	s := b.stack
	db := b.cfg.Database

	var err error
	s.DBSubnetGroup, err = b.register("dbsubnets", &rds.DBSubnetGroup{
		DBSubnetGroupDescription: "HedgeDoc database subnets",
		SubnetIds:                s.Network.SubnetIDs(),
		Tags:                     intrinsics.Tags(b.name + "-dbsubnets"),
	})
	if err != nil {
		return err
	}

	s.Database, err = b.register("db", &rds.DBInstance{
		DBName:                db.Name,
		MasterUsername:        db.Username,
		MasterUserPassword:    output.SecretVal(db.Password),
		AllocatedStorage:      fmt.Sprint(db.AllocatedStorage),
		DBInstanceClass:       db.InstanceClass,
		DBSubnetGroupName:     s.DBSubnetGroup.ID(),
		VPCSecurityGroups:     intrinsics.Any(s.DBSecurityGroup.ID()),
		Engine:                "postgres",
		EngineVersion:         db.EngineVersion,
		StorageType:           "standard",
		PubliclyAccessible:    intrinsics.BoolPtr(false),
		DeletionProtection:    intrinsics.BoolPtr(false),
		BackupRetentionPeriod: intrinsics.IntPtr(0),
		Tags:                  intrinsics.Tags(b.name + "-db"),
	})
	return err
}

func (b *builder) cluster() error {
	s := b.stack

	var err error
	s.Cluster, err = b.register("cluster", &ecs.Cluster{
		Tags: intrinsics.Tags(b.name + "-cluster"),
	})
	if err != nil {
		return err
	}

	s.LogGroup, err = b.register("logs", &logs.LogGroup{
		LogGroupName:    "/hedgedoc/" + b.name,
		RetentionInDays: intrinsics.IntPtr(b.cfg.App.LogRetentionDays),
	})
	if err != nil {
		return err
	}

	s.ExecutionRole, err = b.register("task-exec-role", &iam.Role{
		AssumeRolePolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.ServicePrincipal("ecs-tasks.amazonaws.com"),
			Action:    "sts:AssumeRole",
		}),
		ManagedPolicyArns: intrinsics.Any(iam.ECSTaskExecutionPolicyArn),
		Tags:              intrinsics.Tags(b.name + "-task-exec-role"),
	})
	return err
}

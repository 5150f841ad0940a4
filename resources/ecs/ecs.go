// Package ecs contains CloudFormation AWS::ECS resource descriptors.
package ecs

// Attribute names reported for ECS resources.
const (
	AttrArn               = "Arn"
	AttrTaskDefinitionArn = "TaskDefinitionArn"
	AttrName              = "Name"
)

// Cluster represents AWS::ECS::Cluster.
type Cluster struct {
	ClusterName     any
	ClusterSettings []Cluster_ClusterSettings
	Tags            []any
}

// ResourceType returns the CloudFormation type.
func (Cluster) ResourceType() string { return "AWS::ECS::Cluster" }

// Cluster_ClusterSettings is a cluster-level setting such as containerInsights.
type Cluster_ClusterSettings struct {
	Name  string
	Value string
}

// TaskDefinition represents AWS::ECS::TaskDefinition.
type TaskDefinition struct {
	Family                  any
	Cpu                     string
	Memory                  string
	NetworkMode             string
	RequiresCompatibilities []string
	ExecutionRoleArn        any
	TaskRoleArn             any
	ContainerDefinitions    []TaskDefinition_ContainerDefinition
	Tags                    []any
}

// ResourceType returns the CloudFormation type.
func (TaskDefinition) ResourceType() string { return "AWS::ECS::TaskDefinition" }

// TaskDefinition_ContainerDefinition describes one container.
type TaskDefinition_ContainerDefinition struct {
	Name             string
	Image            string
	Cpu              int
	Memory           int
	Essential        *bool
	PortMappings     []TaskDefinition_PortMapping
	Environment      []TaskDefinition_KeyValuePair
	LogConfiguration *TaskDefinition_LogConfiguration
}

// TaskDefinition_PortMapping maps a container port.
type TaskDefinition_PortMapping struct {
	ContainerPort int
	HostPort      int
	Protocol      string
}

// TaskDefinition_KeyValuePair is an environment variable.
type TaskDefinition_KeyValuePair struct {
	Name  string
	Value any
}

// TaskDefinition_LogConfiguration configures the container log driver.
type TaskDefinition_LogConfiguration struct {
	LogDriver string
	Options   map[string]any
}

// Service represents AWS::ECS::Service.
type Service struct {
	ServiceName          any
	Cluster              any
	TaskDefinition       any
	DesiredCount         *int
	LaunchType           string
	NetworkConfiguration *Service_NetworkConfiguration
	LoadBalancers        []Service_LoadBalancer
	Tags                 []any
}

// ResourceType returns the CloudFormation type.
func (Service) ResourceType() string { return "AWS::ECS::Service" }

// Service_NetworkConfiguration wraps the awsvpc configuration.
type Service_NetworkConfiguration struct {
	AwsvpcConfiguration *Service_AwsVpcConfiguration
}

// Service_AwsVpcConfiguration places tasks in subnets and security groups.
type Service_AwsVpcConfiguration struct {
	AssignPublicIp string
	Subnets        []any
	SecurityGroups []any
}

// Service_LoadBalancer registers the service with a target group.
type Service_LoadBalancer struct {
	ContainerName  string
	ContainerPort  int
	TargetGroupArn any
}

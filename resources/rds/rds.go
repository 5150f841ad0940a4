// Package rds contains CloudFormation AWS::RDS resource descriptors.
package rds

// Attribute names reported for RDS resources.
const (
	AttrEndpointAddress = "Endpoint.Address"
	AttrEndpointPort    = "Endpoint.Port"
)

// DBSubnetGroup represents AWS::RDS::DBSubnetGroup.
type DBSubnetGroup struct {
	DBSubnetGroupDescription string
	SubnetIds                []any
	Tags                     []any
}

// ResourceType returns the CloudFormation type.
func (DBSubnetGroup) ResourceType() string { return "AWS::RDS::DBSubnetGroup" }

// DBInstance represents AWS::RDS::DBInstance.
type DBInstance struct {
	DBName                any
	MasterUsername        any
	MasterUserPassword    any
	AllocatedStorage      string
	DBInstanceClass       string
	DBSubnetGroupName     any
	VPCSecurityGroups     []any
	Engine                string
	EngineVersion         string
	StorageType           string
	PubliclyAccessible    *bool
	DeletionProtection    *bool
	BackupRetentionPeriod *int
	Tags                  []any
}

// ResourceType returns the CloudFormation type.
func (DBInstance) ResourceType() string { return "AWS::RDS::DBInstance" }

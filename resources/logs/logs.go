// Package logs contains CloudFormation AWS::Logs resource descriptors.
package logs

// AttrArn is the log group ARN attribute.
const AttrArn = "Arn"

// LogGroup represents AWS::Logs::LogGroup.
type LogGroup struct {
	LogGroupName    any
	RetentionInDays *int
	Tags            []any
}

// ResourceType returns the CloudFormation type.
func (LogGroup) ResourceType() string { return "AWS::Logs::LogGroup" }

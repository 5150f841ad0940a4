package optimizer

import (
	"strings"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// resource is a plan resource under inspection.
type resource struct {
	id  string
	def hedgedoc.ResourceDef
}

// get walks nested property maps.
func (r resource) get(path ...string) (any, bool) {
	var cur any = r.def.Properties
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// isTrue reports whether the property is set to true.
func (r resource) isTrue(path ...string) bool {
	v, ok := r.get(path...)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// number returns a numeric property. Plans hold int64 when rendered and
// float64 when read back from JSON.
func (r resource) number(path ...string) (float64, bool) {
	v, ok := r.get(path...)
	if !ok {
		return 0, false
	}
	return toNumber(v)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func list(v any) []any {
	items, _ := v.([]any)
	return items
}

// securityGroupRules contains rules for security groups.
var securityGroupRules = []Rule{
	{
		ID:          "OPT-EC2-001",
		Category:    "security",
		Severity:    "high",
		Title:       "Database port open to the internet",
		Description: "An ingress rule allows PostgreSQL (5432) from 0.0.0.0/0.",
		Suggestion:  "Restrict the rule to the security group of the clients that need the database.",
		Applies: func(res resource) bool {
			rules, _ := res.get("SecurityGroupIngress")
			for _, item := range list(rules) {
				rule, _ := item.(map[string]any)
				if rule["CidrIp"] != "0.0.0.0/0" {
					continue
				}
				from, ok1 := toNumber(rule["FromPort"])
				to, ok2 := toNumber(rule["ToPort"])
				if ok1 && ok2 && from <= 5432 && 5432 <= to {
					return true
				}
			}
			return false
		},
	},
}

// s3BucketRules contains rules for S3 buckets.
var s3BucketRules = []Rule{
	{
		ID:          "OPT-S3-001",
		Category:    "security",
		Severity:    "medium",
		Title:       "Bucket public access is not blocked",
		Description: "Without every public access block flag, a bucket policy can make objects public.",
		Suggestion:  "Serve uploads through the application and set all four PublicAccessBlockConfiguration flags.",
		Applies: func(res resource) bool {
			for _, flag := range []string{"BlockPublicAcls", "BlockPublicPolicy", "IgnorePublicAcls", "RestrictPublicBuckets"} {
				if !res.isTrue("PublicAccessBlockConfiguration", flag) {
					return true
				}
			}
			return false
		},
	},
}

// iamPolicyRules contains rules for inline IAM policies.
var iamPolicyRules = []Rule{
	{
		ID:          "OPT-IAM-001",
		Category:    "security",
		Severity:    "medium",
		Title:       "Policy grants wildcard actions",
		Description: "A statement allows every action of a service.",
		Suggestion:  "List the actions the application uses, such as s3:GetObject and s3:PutObject.",
		Applies: func(res resource) bool {
			return hasWildcardAction(res.def.Properties)
		},
	},
}

func hasWildcardAction(v any) bool {
	switch v := v.(type) {
	case map[string]any:
		for key, val := range v {
			if key == "Action" && isWildcard(val) {
				return true
			}
			if hasWildcardAction(val) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if hasWildcardAction(item) {
				return true
			}
		}
	}
	return false
}

func isWildcard(action any) bool {
	switch a := action.(type) {
	case string:
		return a == "*" || strings.HasSuffix(a, ":*")
	case []any:
		for _, item := range a {
			if isWildcard(item) {
				return true
			}
		}
	}
	return false
}

// accessKeyRules contains rules for IAM access keys.
var accessKeyRules = []Rule{
	{
		ID:          "OPT-IAM-002",
		Category:    "security",
		Severity:    "low",
		Title:       "Long-lived access key",
		Description: "Static access keys do not rotate and end up in the task environment.",
		Suggestion:  "Rotate the key regularly by recreating the stack, or grant the bucket to an ECS task role.",
		Applies: func(res resource) bool {
			status, _ := res.get("Status")
			return status != "Inactive"
		},
	},
}

// rdsInstanceRules contains rules for RDS instances.
var rdsInstanceRules = []Rule{
	{
		ID:          "OPT-RDS-001",
		Category:    "security",
		Severity:    "medium",
		Title:       "Database storage is not encrypted",
		Description: "StorageEncrypted is not enabled.",
		Suggestion:  "Set StorageEncrypted to true when creating the instance.",
		Applies: func(res resource) bool {
			return !res.isTrue("StorageEncrypted")
		},
	},
	{
		ID:          "OPT-RDS-002",
		Category:    "reliability",
		Severity:    "medium",
		Title:       "Automated backups are disabled",
		Description: "BackupRetentionPeriod is 0, so no point-in-time recovery is possible.",
		Suggestion:  "Set BackupRetentionPeriod to at least 7 days for notes worth keeping.",
		Applies: func(res resource) bool {
			days, ok := res.number("BackupRetentionPeriod")
			return ok && days == 0
		},
	},
	{
		ID:          "OPT-RDS-003",
		Category:    "reliability",
		Severity:    "low",
		Title:       "Database runs in a single zone",
		Description: "MultiAZ is not enabled.",
		Suggestion:  "Enable MultiAZ for a standby replica in a second zone.",
		Applies: func(res resource) bool {
			return !res.isTrue("MultiAZ")
		},
	},
	{
		ID:          "OPT-RDS-004",
		Category:    "reliability",
		Severity:    "low",
		Title:       "Deletion protection is off",
		Description: "The instance can be deleted without first changing its settings.",
		Suggestion:  "Enable DeletionProtection for long-lived deployments.",
		Applies: func(res resource) bool {
			return !res.isTrue("DeletionProtection")
		},
	},
	{
		ID:          "OPT-RDS-005",
		Category:    "performance",
		Severity:    "medium",
		Title:       "Magnetic database storage",
		Description: "StorageType standard is previous-generation magnetic storage.",
		Suggestion:  "Use gp3, which is faster and costs less per GiB.",
		Applies: func(res resource) bool {
			storage, _ := res.get("StorageType")
			return storage == "standard"
		},
	},
}

// distributionRules contains rules for CloudFront distributions.
var distributionRules = []Rule{
	{
		ID:          "OPT-CF-001",
		Category:    "security",
		Severity:    "medium",
		Title:       "Origin traffic is unencrypted",
		Description: "CloudFront reaches the origin over plain HTTP.",
		Suggestion:  "Give the load balancer a certificate and set OriginProtocolPolicy to https-only.",
		Applies: func(res resource) bool {
			origins, _ := res.get("DistributionConfig", "Origins")
			for _, item := range list(origins) {
				origin, _ := item.(map[string]any)
				custom, _ := origin["CustomOriginConfig"].(map[string]any)
				if custom["OriginProtocolPolicy"] == "http-only" {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "OPT-CF-002",
		Category:    "performance",
		Severity:    "low",
		Title:       "Compression is disabled",
		Description: "The default cache behavior does not compress responses.",
		Suggestion:  "Set Compress to true on the default cache behavior.",
		Applies: func(res resource) bool {
			return !res.isTrue("DistributionConfig", "DefaultCacheBehavior", "Compress")
		},
	},
}

// ecsServiceRules contains rules for ECS services.
var ecsServiceRules = []Rule{
	{
		ID:          "OPT-ECS-001",
		Category:    "reliability",
		Severity:    "low",
		Title:       "Single task",
		Description: "The service runs one task, so a task replacement is an outage.",
		Suggestion:  "Run at least two tasks in different zones.",
		Applies: func(res resource) bool {
			count, ok := res.number("DesiredCount")
			return !ok || count < 2
		},
	},
}

// logGroupRules contains rules for CloudWatch log groups.
var logGroupRules = []Rule{
	{
		ID:          "OPT-LOGS-001",
		Category:    "cost",
		Severity:    "low",
		Title:       "Logs are kept forever",
		Description: "The log group has no retention period.",
		Suggestion:  "Set RetentionInDays.",
		Applies: func(res resource) bool {
			_, ok := res.number("RetentionInDays")
			return !ok
		},
	},
}

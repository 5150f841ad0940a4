package schema

// resourceSchemas covers the resource types of a HedgeDoc stack.
var resourceSchemas = map[string]ResourceSchema{
	"AWS::EC2::VPC": {
		Properties: map[string]PropertySchema{
			"CidrBlock":          {Type: "String"},
			"EnableDnsHostnames": {Type: "Boolean"},
			"EnableDnsSupport":   {Type: "Boolean"},
			"InstanceTenancy":    {Type: "String", AllowedValues: []string{"default", "dedicated", "host"}},
			"Tags":               {Type: "List"},
		},
	},
	"AWS::EC2::InternetGateway": {
		Properties: map[string]PropertySchema{
			"Tags": {Type: "List"},
		},
	},
	"AWS::EC2::VPCGatewayAttachment": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"InternetGatewayId": {Type: "String"},
			"VpcId":             {Type: "String"},
		},
	},
	"AWS::EC2::RouteTable": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId": {Type: "String"},
			"Tags":  {Type: "List"},
		},
	},
	"AWS::EC2::Route": {
		Required: []string{"RouteTableId"},
		Properties: map[string]PropertySchema{
			"RouteTableId":         {Type: "String"},
			"DestinationCidrBlock": {Type: "String"},
			"GatewayId":            {Type: "String"},
		},
	},
	"AWS::EC2::Subnet": {
		Required: []string{"VpcId"},
		Properties: map[string]PropertySchema{
			"VpcId":                       {Type: "String"},
			"CidrBlock":                   {Type: "String"},
			"AvailabilityZone":            {Type: "String"},
			"AssignIpv6AddressOnCreation": {Type: "Boolean"},
			"MapPublicIpOnLaunch":         {Type: "Boolean"},
			"Tags":                        {Type: "List"},
		},
	},
	"AWS::EC2::SubnetRouteTableAssociation": {
		Required: []string{"RouteTableId", "SubnetId"},
		Properties: map[string]PropertySchema{
			"RouteTableId": {Type: "String"},
			"SubnetId":     {Type: "String"},
		},
	},
	"AWS::EC2::SecurityGroup": {
		Required: []string{"GroupDescription"},
		Properties: map[string]PropertySchema{
			"GroupDescription":     {Type: "String"},
			"GroupName":            {Type: "String"},
			"VpcId":                {Type: "String"},
			"SecurityGroupIngress": {Type: "List"},
			"SecurityGroupEgress":  {Type: "List"},
			"Tags":                 {Type: "List"},
		},
	},
	"AWS::RDS::DBSubnetGroup": {
		Required: []string{"DBSubnetGroupDescription", "SubnetIds"},
		Properties: map[string]PropertySchema{
			"DBSubnetGroupDescription": {Type: "String"},
			"SubnetIds":                {Type: "List"},
			"Tags":                     {Type: "List"},
		},
	},
	"AWS::RDS::DBInstance": {
		Required: []string{"DBInstanceClass"},
		Properties: map[string]PropertySchema{
			"DBName":                {Type: "String"},
			"MasterUsername":        {Type: "String"},
			"MasterUserPassword":    {Type: "String"},
			"AllocatedStorage":      {Type: "String"},
			"DBInstanceClass":       {Type: "String"},
			"DBSubnetGroupName":     {Type: "String"},
			"VPCSecurityGroups":     {Type: "List"},
			"Engine":                {Type: "String"},
			"EngineVersion":         {Type: "String"},
			"StorageType":           {Type: "String", AllowedValues: []string{"standard", "gp2", "gp3", "io1", "io2"}},
			"PubliclyAccessible":    {Type: "Boolean"},
			"DeletionProtection":    {Type: "Boolean"},
			"BackupRetentionPeriod": {Type: "Integer"},
			"Tags":                  {Type: "List"},
		},
	},
	"AWS::S3::Bucket": {
		Properties: map[string]PropertySchema{
			"BucketName":                     {Type: "String"},
			"OwnershipControls":              {Type: "Map"},
			"PublicAccessBlockConfiguration": {Type: "Map"},
			"Tags":                           {Type: "List"},
		},
	},
	"AWS::S3::BucketPolicy": {
		Required: []string{"Bucket", "PolicyDocument"},
		Properties: map[string]PropertySchema{
			"Bucket":         {Type: "String"},
			"PolicyDocument": {Type: "Map"},
		},
	},
	"AWS::IAM::User": {
		Properties: map[string]PropertySchema{
			"UserName": {Type: "String"},
			"Path":     {Type: "String"},
			"Tags":     {Type: "List"},
		},
	},
	"AWS::IAM::UserPolicy": {
		Required: []string{"PolicyName", "UserName"},
		Properties: map[string]PropertySchema{
			"UserName":       {Type: "String"},
			"PolicyName":     {Type: "String"},
			"PolicyDocument": {Type: "Map"},
		},
	},
	"AWS::IAM::AccessKey": {
		Required: []string{"UserName"},
		Properties: map[string]PropertySchema{
			"UserName": {Type: "String"},
			"Status":   {Type: "String", AllowedValues: []string{"Active", "Inactive"}},
		},
	},
	"AWS::IAM::Role": {
		Required: []string{"AssumeRolePolicyDocument"},
		Properties: map[string]PropertySchema{
			"RoleName":                 {Type: "String"},
			"AssumeRolePolicyDocument": {Type: "Map"},
			"ManagedPolicyArns":        {Type: "List"},
			"Path":                     {Type: "String"},
			"Tags":                     {Type: "List"},
		},
	},
	"AWS::IAM::ServerCertificate": {
		Properties: map[string]PropertySchema{
			"ServerCertificateName": {Type: "String"},
			"CertificateBody":       {Type: "String"},
			"PrivateKey":            {Type: "String"},
			"Path":                  {Type: "String"},
			"Tags":                  {Type: "List"},
		},
	},
	"AWS::CertificateManager::Certificate": {
		Required: []string{"DomainName"},
		Properties: map[string]PropertySchema{
			"DomainName":       {Type: "String"},
			"ValidationMethod": {Type: "String", AllowedValues: []string{"DNS", "EMAIL"}},
			"Tags":             {Type: "List"},
		},
	},
	"AWS::ElasticLoadBalancingV2::LoadBalancer": {
		Properties: map[string]PropertySchema{
			"Name":           {Type: "String"},
			"Scheme":         {Type: "String", AllowedValues: []string{"internet-facing", "internal"}},
			"Type":           {Type: "String", AllowedValues: []string{"application", "network", "gateway"}},
			"Subnets":        {Type: "List"},
			"SecurityGroups": {Type: "List"},
			"Tags":           {Type: "List"},
		},
	},
	"AWS::ElasticLoadBalancingV2::TargetGroup": {
		Properties: map[string]PropertySchema{
			"Name":                {Type: "String"},
			"Port":                {Type: "Integer"},
			"Protocol":            {Type: "String", AllowedValues: []string{"HTTP", "HTTPS", "TCP", "TLS", "UDP", "TCP_UDP", "GENEVE"}},
			"TargetType":          {Type: "String", AllowedValues: []string{"instance", "ip", "lambda", "alb"}},
			"VpcId":               {Type: "String"},
			"HealthCheckPath":     {Type: "String"},
			"HealthCheckProtocol": {Type: "String", AllowedValues: []string{"HTTP", "HTTPS", "TCP"}},
			"Matcher":             {Type: "Map"},
			"Tags":                {Type: "List"},
		},
	},
	"AWS::ElasticLoadBalancingV2::Listener": {
		Required: []string{"DefaultActions", "LoadBalancerArn"},
		Properties: map[string]PropertySchema{
			"LoadBalancerArn": {Type: "String"},
			"Port":            {Type: "Integer"},
			"Protocol":        {Type: "String", AllowedValues: []string{"HTTP", "HTTPS", "TCP", "TLS", "UDP", "TCP_UDP", "GENEVE"}},
			"SslPolicy":       {Type: "String"},
			"Certificates":    {Type: "List"},
			"DefaultActions":  {Type: "List"},
		},
	},
	"AWS::ECS::Cluster": {
		Properties: map[string]PropertySchema{
			"ClusterName":     {Type: "String"},
			"ClusterSettings": {Type: "List"},
			"Tags":            {Type: "List"},
		},
	},
	"AWS::ECS::TaskDefinition": {
		Properties: map[string]PropertySchema{
			"Family":                  {Type: "String"},
			"Cpu":                     {Type: "String"},
			"Memory":                  {Type: "String"},
			"NetworkMode":             {Type: "String", AllowedValues: []string{"bridge", "host", "awsvpc", "none"}},
			"RequiresCompatibilities": {Type: "List"},
			"ExecutionRoleArn":        {Type: "String"},
			"TaskRoleArn":             {Type: "String"},
			"ContainerDefinitions":    {Type: "List"},
			"Tags":                    {Type: "List"},
		},
	},
	"AWS::ECS::Service": {
		Properties: map[string]PropertySchema{
			"ServiceName":          {Type: "String"},
			"Cluster":              {Type: "String"},
			"TaskDefinition":       {Type: "String"},
			"DesiredCount":         {Type: "Integer"},
			"LaunchType":           {Type: "String", AllowedValues: []string{"EC2", "FARGATE", "EXTERNAL"}},
			"NetworkConfiguration": {Type: "Map"},
			"LoadBalancers":        {Type: "List"},
			"Tags":                 {Type: "List"},
		},
	},
	"AWS::Logs::LogGroup": {
		Properties: map[string]PropertySchema{
			"LogGroupName":    {Type: "String"},
			"RetentionInDays": {Type: "Integer"},
			"Tags":            {Type: "List"},
		},
	},
	"AWS::CloudFront::Distribution": {
		Required: []string{"DistributionConfig"},
		Properties: map[string]PropertySchema{
			"DistributionConfig": {Type: "Map"},
			"Tags":               {Type: "List"},
		},
	},
}

package hedgedoc

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sort"

	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/intrinsics"
	"github.com/lex00/hedgedoc-aws-go/output"
	"github.com/lex00/hedgedoc-aws-go/resources/ecs"
	"github.com/lex00/hedgedoc-aws-go/resources/iam"
	"github.com/lex00/hedgedoc-aws-go/resources/rds"
)

// RuntimeValues are the provider-assigned values the container
// environment is built from.
type RuntimeValues struct {
	DBAddress       string
	DBPort          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Hostname        string
}

// Environment returns the HedgeDoc container environment sorted by name.
// Values carrying credentials are secret outputs.
func Environment(cfg *config.Config, rv RuntimeValues) []ecs.TaskDefinition_KeyValuePair {
	dbURL := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Database.Username, cfg.Database.Password),
		Host:   net.JoinHostPort(rv.DBAddress, rv.DBPort),
		Path:   "/" + cfg.Database.Name,
	}

	env := []ecs.TaskDefinition_KeyValuePair{
		{Name: "CMD_DB_URL", Value: output.SecretVal(dbURL.String())},
		{Name: "CMD_IMAGE_UPLOAD_TYPE", Value: "s3"},
		{Name: "CMD_DOMAIN", Value: rv.Hostname},
		{Name: "CMD_PROTOCOL_USESSL", Value: "true"},
		{Name: "CMD_ALLOW_ORIGIN", Value: fmt.Sprintf("['%s']", rv.Hostname)},
		{Name: "CMD_SESSION_SECRET", Value: output.SecretVal(cfg.App.SessionSecret)},
		{Name: "CMD_S3_BUCKET", Value: rv.Bucket},
		{Name: "CMD_S3_REGION", Value: cfg.Region},
		{Name: "CMD_S3_ACCESS_KEY_ID", Value: rv.AccessKeyID},
		{Name: "CMD_S3_SECRET_ACCESS_KEY", Value: output.SecretVal(rv.SecretAccessKey)},
	}
	if cfg.Frontend == config.FrontendTLS {
		env = append(env, ecs.TaskDefinition_KeyValuePair{
			Name:  "CMD_S3_ENDPOINT",
			Value: fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region),
		})
	}
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })
	return env
}

// service defers the task definition and service until every value of the
// container environment is known.
func (b *builder) service() error {
	s := b.stack
	inputs := []output.Input{
		s.Database.Attr(rds.AttrEndpointAddress),
		s.Database.Attr(rds.AttrEndpointPort),
		s.Bucket.ID(),
		s.AccessKey.ID(),
		s.AccessKey.SecretAttr(iam.AttrSecretAccessKey),
		s.Hostname,
	}

	// The environment embeds resolved values, so the edges to their
	// resources are declared explicitly.
	sources := []*engine.Resource{s.Database, s.Bucket, s.AccessKey}
	switch {
	case s.Frontend.Distribution != nil:
		sources = append(sources, s.Frontend.Distribution)
	case b.cfg.TLS.Domain == "":
		sources = append(sources, s.LoadBalancer)
	}

	b.d.After(inputs, func(_ context.Context, values []any) error {
		rv := RuntimeValues{
			DBAddress:       fmt.Sprint(values[0]),
			DBPort:          fmt.Sprint(values[1]),
			Bucket:          fmt.Sprint(values[2]),
			AccessKeyID:     fmt.Sprint(values[3]),
			SecretAccessKey: fmt.Sprint(values[4]),
			Hostname:        fmt.Sprint(values[5]),
		}
		return b.registerService(Environment(b.cfg, rv), sources)
	})
	return nil
}

func (b *builder) registerService(env []ecs.TaskDefinition_KeyValuePair, sources []*engine.Resource) error {
	s := b.stack
	app := b.cfg.App

	taskDef, err := b.register("task", &ecs.TaskDefinition{
		Family:                  b.name,
		Cpu:                     fmt.Sprint(app.CPU),
		Memory:                  fmt.Sprint(app.Memory),
		NetworkMode:             "awsvpc",
		RequiresCompatibilities: []string{"FARGATE"},
		ExecutionRoleArn:        s.ExecutionRole.Attr(iam.AttrArn),
		ContainerDefinitions: []ecs.TaskDefinition_ContainerDefinition{{
			Name:      ContainerName,
			Image:     app.Image,
			Cpu:       app.CPU,
			Memory:    app.Memory,
			Essential: intrinsics.BoolPtr(true),
			PortMappings: []ecs.TaskDefinition_PortMapping{{
				ContainerPort: app.Port,
				HostPort:      app.Port,
				Protocol:      "tcp",
			}},
			Environment: env,
			LogConfiguration: &ecs.TaskDefinition_LogConfiguration{
				LogDriver: "awslogs",
				Options: map[string]any{
					"awslogs-group":         s.LogGroup.ID(),
					"awslogs-region":        b.cfg.Region,
					"awslogs-stream-prefix": ContainerName,
				},
			},
		}},
		Tags: intrinsics.Tags(b.name + "-task"),
	}, engine.DependsOn(sources...))
	if err != nil {
		return err
	}

	svc, err := b.register("svc", &ecs.Service{
		Cluster:        s.Cluster.ID(),
		TaskDefinition: taskDef.ID(),
		DesiredCount:   intrinsics.IntPtr(app.DesiredCount),
		LaunchType:     "FARGATE",
		NetworkConfiguration: &ecs.Service_NetworkConfiguration{
			AwsvpcConfiguration: &ecs.Service_AwsVpcConfiguration{
				AssignPublicIp: "ENABLED",
				Subnets:        s.Network.SubnetIDs(),
				SecurityGroups: intrinsics.Any(s.ServiceSecurityGroup.ID()),
			},
		},
		LoadBalancers: []ecs.Service_LoadBalancer{{
			ContainerName:  ContainerName,
			ContainerPort:  app.Port,
			TargetGroupArn: s.TargetGroup.ID(),
		}},
		Tags: intrinsics.Tags(b.name + "-svc"),
	}, engine.DependsOn(s.Frontend.listeners()...))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.environment = env
	s.taskDefinition = taskDef
	s.service = svc
	s.mu.Unlock()
	return nil
}

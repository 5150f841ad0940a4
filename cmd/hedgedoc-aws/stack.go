package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/awsclient"
	"github.com/lex00/hedgedoc-aws-go/internal/certs"
	"github.com/lex00/hedgedoc-aws-go/internal/config"
	"github.com/lex00/hedgedoc-aws-go/internal/engine"
	"github.com/lex00/hedgedoc-aws-go/internal/provider/acmcert"
	"github.com/lex00/hedgedoc-aws-go/internal/provider/cloudcontrol"
	"github.com/lex00/hedgedoc-aws-go/internal/provider/dispatch"
	"github.com/lex00/hedgedoc-aws-go/internal/provider/iamkey"
	"github.com/lex00/hedgedoc-aws-go/internal/provider/preview"
	stack "github.com/lex00/hedgedoc-aws-go/internal/stacks/hedgedoc"
	"github.com/lex00/hedgedoc-aws-go/internal/state"
	"github.com/lex00/hedgedoc-aws-go/internal/template"
	"github.com/lex00/hedgedoc-aws-go/internal/zones"
)

// placeholderSecret stands in for values kept in Secrets Manager when no
// AWS call is made. Plans redact secrets, so it never shows.
const placeholderSecret = "placeholder"

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	configFile string
	envFiles   []string
	verbose    bool

	// reloadEnv makes .env values replace variables already set, for
	// re-reading files that changed.
	reloadEnv bool
}

// logger returns a text logger on stderr at level, or debug with --verbose.
func (g *globalOptions) logger(level slog.Level) *slog.Logger {
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the .env files and the stack file.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	load := config.LoadDotEnv
	if g.reloadEnv {
		load = config.ReloadDotEnv
	}
	if err := load(g.envFiles...); err != nil {
		return nil, err
	}
	return config.Load(g.configFile)
}

// loadOffline loads a configuration for commands that make no AWS calls.
// Secrets Manager references are replaced by placeholders and a missing
// region defaults to us-east-1.
func (g *globalOptions) loadOffline() (*config.Config, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Password == "" && cfg.Database.PasswordSecretID != "" {
		cfg.Database.Password = placeholderSecret
	}
	if cfg.App.SessionSecret == "" && cfg.App.SessionSecretID != "" {
		cfg.App.SessionSecret = placeholderSecret
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// session is a loaded configuration plus the AWS settings to act on it.
type session struct {
	cfg *config.Config
	aws aws.Config
}

// connect loads the configuration, resolves the AWS settings and fills
// secrets from Secrets Manager.
func (g *globalOptions) connect(ctx context.Context) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := connectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.NeedsSecrets() {
		if err := cfg.ResolveSecrets(ctx, secretsmanager.NewFromConfig(s.aws)); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return s, nil
}

// connectConfig resolves the AWS settings for cfg. The configured region
// wins over the environment's.
func connectConfig(ctx context.Context, cfg *config.Config) (*session, error) {
	awsCfg, err := awsclient.Load(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	cfg.Region = awsCfg.Region
	return &session{cfg: cfg, aws: awsCfg}, nil
}

// openStore returns the snapshot store the configuration names. The S3
// backend loads AWS settings unless awsCfg is given.
func openStore(ctx context.Context, cfg *config.Config, awsCfg *aws.Config) (state.Store, error) {
	if cfg.State.Backend != config.BackendS3 {
		return &state.FileStore{Path: cfg.State.Path}, nil
	}
	if awsCfg == nil {
		loaded, err := awsclient.Load(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		awsCfg = &loaded
	}
	return &state.S3Store{
		Client: s3.NewFromConfig(*awsCfg),
		Bucket: cfg.State.Bucket,
		Key:    cfg.State.Key,
	}, nil
}

// deployProvider creates resources through Cloud Control, except for types
// Cloud Control cannot create or whose write-only attributes it does not
// report.
func deployProvider(awsCfg aws.Config, logger *slog.Logger) *dispatch.Provider {
	return dispatch.New(cloudcontrol.New(awsCfg), map[string]engine.Provider{
		iamkey.ResourceType:  iamkey.New(awsCfg),
		acmcert.ResourceType: acmcert.New(awsCfg, acmcert.WithLogger(logger)),
	})
}

// stateWriteTimeout bounds the final state write of up and destroy.
const stateWriteTimeout = 2 * time.Minute

// detach returns a context for recording state that survives the
// interrupt which cancelled ctx.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), stateWriteTimeout)
}

// onceCertificate generates one self-signed certificate and hands the same
// one to every caller, so a preview and a deployment of one run agree.
func onceCertificate() stack.CertificateGenerator {
	var (
		once sync.Once
		cert *certs.Certificate
		err  error
	)
	return func(commonName string, dnsNames []string) (*certs.Certificate, error) {
		once.Do(func() {
			cert, err = certs.SelfSigned(commonName, dnsNames, certs.DefaultValidity)
		})
		return cert, err
	}
}

func planDescription(cfg *config.Config) string {
	return fmt.Sprintf("HedgeDoc stack %s (%s frontend)", cfg.Name, cfg.Frontend)
}

// buildPlan runs the stack against the preview provider and renders the
// result.
func buildPlan(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...stack.Option) (*hedgedoc.Template, *engine.Deployment, error) {
	d, err := engine.Run(ctx, engine.Options{
		Stack:    cfg.Name,
		Provider: preview.New(cfg.Region),
		Logger:   logger,
		Parallel: cfg.Parallel,
	}, func(d *engine.Deployment) error {
		_, err := stack.New(ctx, d, cfg, zones.Static(cfg.PreviewZones()), opts...)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	t, err := d.Template(ctx, planDescription(cfg))
	if err != nil {
		return nil, nil, err
	}
	return t, d, nil
}

// planResult wraps a plan in the command output contract.
func planResult(cfg *config.Config, t *hedgedoc.Template, err error) hedgedoc.PlanResult {
	if err != nil {
		return hedgedoc.PlanResult{Success: false, Stack: cfg.Name, Errors: []string{err.Error()}}
	}
	ids, orderErr := template.Order(t)
	if orderErr != nil {
		return hedgedoc.PlanResult{Success: false, Stack: cfg.Name, Errors: []string{orderErr.Error()}}
	}
	return hedgedoc.PlanResult{Success: true, Stack: cfg.Name, Template: *t, Resources: ids}
}

// encodeTemplate renders t as json or yaml.
func encodeTemplate(t *hedgedoc.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(t)
	case "yaml":
		return template.ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// writeOutput prints data, or writes it to outputFile when one is set.
func writeOutput(data []byte, outputFile string) error {
	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outputFile, data, 0o644)
}

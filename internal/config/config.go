// Package config loads the stack configuration from a YAML file, a .env
// file, HEDGEDOC_* environment variables and AWS Secrets Manager.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingValue is returned by Validate for every required value that is
// not set.
var ErrMissingValue = errors.New("config: missing required value")

// DefaultFile is the stack file looked up when none is given.
const DefaultFile = "hedgedoc.yaml"

// Frontend variants.
const (
	FrontendCDN = "cdn"
	FrontendTLS = "tls"
)

// Certificate sources for the tls frontend.
const (
	CertificateSelfSigned = "self-signed"
	CertificateACM        = "acm"
	CertificateARN        = "arn"
)

// State backends.
const (
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config is the stack configuration.
type Config struct {
	Name     string   `yaml:"name"`
	Region   string   `yaml:"region"`
	Frontend string   `yaml:"frontend"`
	Parallel int      `yaml:"parallel"`
	Zones    []string `yaml:"zones"`

	Network  Network  `yaml:"network"`
	Database Database `yaml:"database"`
	App      App      `yaml:"app"`
	TLS      TLS      `yaml:"tls"`
	State    State    `yaml:"state"`
}

// Network configures the VPC.
type Network struct {
	CIDRBlock          string `yaml:"cidr_block"`
	InstanceTenancy    string `yaml:"instance_tenancy"`
	EnableDNSHostnames bool   `yaml:"enable_dns_hostnames"`
	EnableDNSSupport   bool   `yaml:"enable_dns_support"`
	ZoneCount          int    `yaml:"zone_count"`
}

// Database configures the PostgreSQL instance.
type Database struct {
	Name             string `yaml:"name"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	PasswordSecretID string `yaml:"password_secret_id"`
	EngineVersion    string `yaml:"engine_version"`
	InstanceClass    string `yaml:"instance_class"`
	AllocatedStorage int    `yaml:"allocated_storage"`
}

// App configures the HedgeDoc container.
type App struct {
	Image            string `yaml:"image"`
	CPU              int    `yaml:"cpu"`
	Memory           int    `yaml:"memory"`
	Port             int    `yaml:"port"`
	DesiredCount     int    `yaml:"desired_count"`
	SessionSecret    string `yaml:"session_secret"`
	SessionSecretID  string `yaml:"session_secret_id"`
	LogRetentionDays int    `yaml:"log_retention_days"`
}

// TLS configures the tls frontend.
type TLS struct {
	Certificate    string `yaml:"certificate"`
	Domain         string `yaml:"domain"`
	CertificateARN string `yaml:"certificate_arn"`
}

// State configures where the deployment snapshot is kept.
type State struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Bucket  string `yaml:"bucket"`
	Key     string `yaml:"key"`
}

// Default returns the configuration used for every value the stack file
// leaves out.
func Default() *Config {
	return &Config{
		Name:     "hedgedoc1",
		Frontend: FrontendCDN,
		Parallel: 10,
		Network: Network{
			CIDRBlock:       "10.100.0.0/16",
			InstanceTenancy: "default",
			ZoneCount:       2,
		},
		Database: Database{
			EngineVersion:    "13.2",
			InstanceClass:    "db.t3.micro",
			AllocatedStorage: 20,
		},
		App: App{
			Image:            "quay.io/hedgedoc/hedgedoc:1.8.2",
			CPU:              256,
			Memory:           512,
			Port:             3000,
			DesiredCount:     1,
			LogRetentionDays: 7,
		},
		TLS: TLS{
			Certificate: CertificateSelfSigned,
		},
		State: State{
			Backend: BackendFile,
		},
	}
}

// Parse decodes a stack file on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing stack file: %w", err)
	}
	cfg.fillDerived()
	return cfg, nil
}

// Load reads a stack file and applies environment overrides. A missing
// file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultFile {
		data = nil
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	return loadDotEnv(godotenv.Load, paths)
}

// ReloadDotEnv is LoadDotEnv for files that changed after a first load:
// their values replace variables already set.
func ReloadDotEnv(paths ...string) error {
	return loadDotEnv(godotenv.Overload, paths)
}

func loadDotEnv(load func(...string) error, paths []string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Environment variables that override the stack file.
const (
	EnvDBPassword    = "HEDGEDOC_DB_PASSWORD"
	EnvSessionSecret = "HEDGEDOC_SESSION_SECRET"
	EnvDBName        = "HEDGEDOC_DB_NAME"
	EnvDBUsername    = "HEDGEDOC_DB_USERNAME"
	EnvRegion        = "HEDGEDOC_REGION"
	EnvFrontend      = "HEDGEDOC_FRONTEND"
)

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvDBPassword, &c.Database.Password)
	set(EnvSessionSecret, &c.App.SessionSecret)
	set(EnvDBName, &c.Database.Name)
	set(EnvDBUsername, &c.Database.Username)
	set(EnvRegion, &c.Region)
	set(EnvFrontend, &c.Frontend)
	c.fillDerived()
}

func (c *Config) fillDerived() {
	if c.State.Path == "" {
		c.State.Path = ".hedgedoc/" + c.Name + ".json"
	}
	if c.State.Key == "" {
		c.State.Key = "hedgedoc/" + c.Name + ".json"
	}
}

// PreviewZones returns the zones an offline preview spans: the configured
// zones list, or zone_count zones named after the region.
func (c *Config) PreviewZones() []string {
	if len(c.Zones) > 0 {
		return append([]string(nil), c.Zones...)
	}
	region := c.Region
	if region == "" {
		region = "us-east-1"
	}
	count := c.Network.ZoneCount
	if count < 1 {
		count = 1
	}
	out := make([]string, 0, count)
	for i := 0; i < count && i < 26; i++ {
		out = append(out, region+string(rune('a'+i)))
	}
	return out
}

// Validate reports every missing or invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	missing := func(field string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingValue, field))
	}
	invalid := func(field, value string, allowed ...string) {
		errs = append(errs, fmt.Errorf("config: invalid %s %q (want %s)", field, value, strings.Join(allowed, " or ")))
	}

	if c.Name == "" {
		missing("name")
	}
	if c.Database.Name == "" {
		missing("database.name")
	}
	if c.Database.Username == "" {
		missing("database.username")
	}
	if c.Database.Password == "" {
		missing("database.password (or database.password_secret_id, " + EnvDBPassword + ")")
	}
	if c.App.SessionSecret == "" {
		missing("app.session_secret (or app.session_secret_id, " + EnvSessionSecret + ")")
	}
	if c.Network.ZoneCount < 1 {
		errs = append(errs, fmt.Errorf("config: network.zone_count must be at least 1, got %d", c.Network.ZoneCount))
	}

	switch c.Frontend {
	case FrontendCDN:
	case FrontendTLS:
		switch c.TLS.Certificate {
		case CertificateSelfSigned:
		case CertificateACM:
			if c.TLS.Domain == "" {
				missing("tls.domain")
			}
		case CertificateARN:
			if c.TLS.CertificateARN == "" {
				missing("tls.certificate_arn")
			}
		default:
			invalid("tls.certificate", c.TLS.Certificate, CertificateSelfSigned, CertificateACM, CertificateARN)
		}
	default:
		invalid("frontend", c.Frontend, FrontendCDN, FrontendTLS)
	}

	switch c.State.Backend {
	case BackendFile:
		if c.State.Path == "" {
			missing("state.path")
		}
	case BackendS3:
		if c.State.Bucket == "" {
			missing("state.bucket")
		}
	default:
		invalid("state.backend", c.State.Backend, BackendFile, BackendS3)
	}

	return errors.Join(errs...)
}

// Redacted returns a copy with secret values masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Database.Password != "" {
		cp.Database.Password = "[secret]"
	}
	if cp.App.SessionSecret != "" {
		cp.App.SessionSecret = "[secret]"
	}
	return &cp
}

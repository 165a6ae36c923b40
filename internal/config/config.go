// Package config loads harness configuration: an optional YAML file
// overlaid with STACKCHECK_-prefixed environment variables, with defaults
// for the well-known ports and paths of the product-catalog stack.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for stackcheck.
type Config struct {
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Stack     StackConfig     `mapstructure:"stack"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	API       APIConfig       `mapstructure:"api"`
	Image     ImageConfig     `mapstructure:"image"`
	Datastore DatastoreConfig `mapstructure:"datastore"`
	Surface   SurfaceConfig   `mapstructure:"surface"`
}

// SurfaceConfig declares the expected command surface.
type SurfaceConfig struct {
	Targets []string `mapstructure:"targets"`
}

// GatewayConfig describes the single externally reachable entry point.
type GatewayConfig struct {
	URL string `mapstructure:"url"`
}

// StackConfig names the compose project and its services. Container names
// follow the compose convention <project>-<service>-1.
type StackConfig struct {
	Project          string `mapstructure:"project"`
	GatewayService   string `mapstructure:"gateway_service"`
	APIService       string `mapstructure:"api_service"`
	DatastoreService string `mapstructure:"datastore_service"`

	// Host is where private ports would be reachable if isolation were
	// broken; the harness dials it expecting failure.
	Host          string `mapstructure:"host"`
	APIPort       int    `mapstructure:"api_port"`
	DatastorePort int    `mapstructure:"datastore_port"`

	Volume string `mapstructure:"volume"`
}

// PathsConfig locates the static descriptors the config suites read.
type PathsConfig struct {
	Makefile    string `mapstructure:"makefile"`
	Dockerfile  string `mapstructure:"dockerfile"`
	ComposeDev  string `mapstructure:"compose_dev"`
	ComposeProd string `mapstructure:"compose_prod"`
	EnvFile     string `mapstructure:"env_file"`
}

// ReadinessConfig bounds the readiness poll.
type ReadinessConfig struct {
	MaxWait      time.Duration `mapstructure:"max_wait"`
	Interval     time.Duration `mapstructure:"interval"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// APIConfig tunes the API-contract suite.
type APIConfig struct {
	BurstSize      int           `mapstructure:"burst_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ImageConfig tunes the advisory image checks.
type ImageConfig struct {
	Ref      string `mapstructure:"ref"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// DatastoreConfig names the env-file keys carrying root credentials and the
// database name.
type DatastoreConfig struct {
	UserKey     string `mapstructure:"user_key"`
	PasswordKey string `mapstructure:"password_key"`
	DatabaseKey string `mapstructure:"database_key"`
}

// ContainerName returns the compose container name for a service.
func (s StackConfig) ContainerName(service string) string {
	return fmt.Sprintf("%s-%s-1", s.Project, service)
}

// ExpectedContainers lists the container names the live suite requires.
func (s StackConfig) ExpectedContainers() []string {
	return []string{
		s.ContainerName(s.GatewayService),
		s.ContainerName(s.APIService),
		s.ContainerName(s.DatastoreService),
	}
}

// Load reads config from the optional YAML file at path, then overlays
// environment variables with the STACKCHECK_ prefix
// (e.g. STACKCHECK_GATEWAY_URL).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("gateway.url", "http://localhost:8080")
	v.SetDefault("stack.project", "product-catalog")
	v.SetDefault("stack.gateway_service", "nginx")
	v.SetDefault("stack.api_service", "api")
	v.SetDefault("stack.datastore_service", "mongo")
	v.SetDefault("stack.host", "localhost")
	v.SetDefault("stack.api_port", 3000)
	v.SetDefault("stack.datastore_port", 27017)
	v.SetDefault("stack.volume", "product-catalog_mongo-data")
	v.SetDefault("paths.makefile", "Makefile")
	v.SetDefault("paths.dockerfile", "Dockerfile")
	v.SetDefault("paths.compose_dev", "docker-compose.yml")
	v.SetDefault("paths.compose_prod", "docker-compose.prod.yml")
	v.SetDefault("paths.env_file", ".env")
	v.SetDefault("readiness.max_wait", 60*time.Second)
	v.SetDefault("readiness.interval", 2*time.Second)
	v.SetDefault("readiness.probe_timeout", 2*time.Second)
	v.SetDefault("api.burst_size", 5)
	v.SetDefault("api.request_timeout", 10*time.Second)
	v.SetDefault("image.ref", "product-catalog-api:latest")
	v.SetDefault("image.max_bytes", int64(500*1024*1024))
	v.SetDefault("surface.targets", []string{"up", "down", "logs", "ps", "test"})
	v.SetDefault("datastore.user_key", "MONGO_INITDB_ROOT_USERNAME")
	v.SetDefault("datastore.password_key", "MONGO_INITDB_ROOT_PASSWORD")
	v.SetDefault("datastore.database_key", "MONGO_INITDB_DATABASE")

	v.SetEnvPrefix("STACKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("stackcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

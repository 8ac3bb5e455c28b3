package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"flightsurety/pkg/domain"
	pstrings "flightsurety/pkg/platform/strings"
)

// EnvPrefix namespaces every environment override, e.g. FLIGHTSURETY_HTTP_ADDR.
const EnvPrefix = "FLIGHTSURETY"

// Config is the process configuration of the ledger server.
type Config struct {
	HTTPAddr    string `yaml:"httpAddr"    split_words:"true"`
	MetricsAddr string `yaml:"metricsAddr" split_words:"true"`

	// Owner is the principal allowed to toggle operational mode and
	// authorize callers.
	Owner             string        `yaml:"owner"`
	BootstrapAirline  string        `yaml:"bootstrapAirline"  split_words:"true"`
	AuthorizedCallers []string      `yaml:"authorizedCallers" split_words:"true"`
	MinimumFund       string        `yaml:"minimumFund"       split_words:"true"`
	EnforceAllowlist  bool          `yaml:"enforceAllowlist"  split_words:"true"`
	TxTimeout         time.Duration `yaml:"txTimeout"         split_words:"true"`

	JWT        JWTConfig `yaml:"jwt"`
	AdminToken string    `yaml:"adminToken" split_words:"true"`

	Redis       RedisConfig `yaml:"redis"`
	PostgresDSN string      `yaml:"postgresDSN" envconfig:"POSTGRES_DSN"`
	Kafka       KafkaConfig `yaml:"kafka"`

	LogLevel  string `yaml:"logLevel"  split_words:"true"`
	LogFormat string `yaml:"logFormat" split_words:"true"`
}

// JWTConfig configures caller tokens.
type JWTConfig struct {
	SigningKey string        `yaml:"signingKey" split_words:"true"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	TTL        time.Duration `yaml:"ttl"`
}

// RedisConfig configures the allow-list backend. An empty URL keeps the
// allow-list in memory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize"     split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout"  split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout"  split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
}

// KafkaConfig configures the event stream mirror. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	Partitions int32    `yaml:"partitions"`
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		MinimumFund: domain.Ether(10).Dec(),
		TxTimeout:   5 * time.Second,
		JWT: JWTConfig{
			SigningKey: "dev-secret-key-change-in-production",
			Issuer:     "flightsurety",
			Audience:   "flightsurety-ledger",
			TTL:        time.Hour,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:      "flightsurety.ledger-events",
			Partitions: 3,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when one is given, then FLIGHTSURETY_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every malformed field at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.OwnerID(); err != nil {
		errs = append(errs, fmt.Errorf("owner: %w", err))
	}
	if c.BootstrapAirline != "" {
		if _, err := domain.ParsePrincipalID(c.BootstrapAirline); err != nil {
			errs = append(errs, fmt.Errorf("bootstrapAirline: %w", err))
		}
	}
	if _, err := c.CallerIDs(); err != nil {
		errs = append(errs, fmt.Errorf("authorizedCallers: %w", err))
	}
	if _, err := domain.ParseAmount(c.MinimumFund); err != nil {
		errs = append(errs, fmt.Errorf("minimumFund: %w", err))
	}
	if c.TxTimeout <= 0 {
		errs = append(errs, errors.New("txTimeout: must be positive"))
	}
	if strings.TrimSpace(c.JWT.SigningKey) == "" {
		errs = append(errs, errors.New("jwt.signingKey: required"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic: required when brokers are set"))
	}
	return errors.Join(errs...)
}

// OwnerID parses the configured owner.
func (c *Config) OwnerID() (domain.PrincipalID, error) {
	return domain.ParsePrincipalID(c.Owner)
}

// CallerIDs parses the initial authorized callers, ignoring blanks and
// case-insensitive duplicates.
func (c *Config) CallerIDs() ([]domain.CallerID, error) {
	raws := pstrings.DedupeAndTrimLower(c.AuthorizedCallers)
	ids := make([]domain.CallerID, 0, len(raws))
	for _, raw := range raws {
		id, err := domain.ParseCallerID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

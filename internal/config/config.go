package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values for database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Supported values for identity.mode.
const (
	IdentityModeHMAC = "hmac" // shared-secret HS256 tokens
	IdentityModeX509 = "x509" // RS256 tokens checked against a published certificate set
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Identity IdentityConfig `mapstructure:"identity"`
	Merge    MergeConfig    `mapstructure:"merge"`
	S3       S3Config       `mapstructure:"s3"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the workout store backend. DSN is a file path for
// sqlite, a connection string for postgres and a URI for mongo; Name is only
// used by mongo.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	Name         string `mapstructure:"name"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// IdentityConfig configures bearer token verification.
type IdentityConfig struct {
	Mode     string        `mapstructure:"mode"`
	Secret   string        `mapstructure:"secret"`
	CertURL  string        `mapstructure:"cert_url"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MergeConfig holds the server-wide defaults for the PUT merge.
type MergeConfig struct {
	StrictLength bool `mapstructure:"strict_length"`
	WriteDone    bool `mapstructure:"write_done"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Prefix          string `mapstructure:"prefix"`
}

// Enabled reports whether enough is configured to talk to a bucket.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.Region != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, identity.cert_url -> IDENTITY_CERT_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key gets a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "workouts.db")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)

	v.SetDefault("identity.mode", IdentityModeHMAC)
	v.SetDefault("identity.secret", "")
	v.SetDefault("identity.cert_url", "")
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.audience", "")
	v.SetDefault("identity.timeout", "5s")

	v.SetDefault("merge.strict_length", false)
	v.SetDefault("merge.write_done", false)

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.prefix", "exports")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	err = v.ReadInConfig()
	// A missing config file is fine, defaults and env vars still apply.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

// Validate checks the settings every command relies on.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("database.driver %q is not one of sqlite, postgres, mongo", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Database.Driver == DriverMongo && c.Database.Name == "" {
		return errors.New("database.name is required for mongo")
	}
	return nil
}

// ValidateIdentity checks the token verification settings. Only the serve
// command needs them.
func (c Config) ValidateIdentity() error {
	switch c.Identity.Mode {
	case IdentityModeHMAC:
		if c.Identity.Secret == "" {
			return errors.New("identity.secret is required in hmac mode")
		}
	case IdentityModeX509:
		if c.Identity.CertURL == "" {
			return errors.New("identity.cert_url is required in x509 mode")
		}
	default:
		return fmt.Errorf("identity.mode %q is not one of hmac, x509", c.Identity.Mode)
	}
	if c.Identity.Timeout <= 0 {
		return errors.New("identity.timeout must be positive")
	}
	return nil
}

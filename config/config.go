// Package config holds the settings shared by every parle command.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML config file, PARLE_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/parle/constants"
)

const EnvPrefix = "PARLE"

type Config struct {
	// Workers is the chunk count for compress and decompress. 0 picks the
	// host's parallelism (at least 2).
	Workers int    `mapstructure:"workers" yaml:"workers"`
	OutDir  string `mapstructure:"out_dir" yaml:"out_dir"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`

	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Manifest ManifestConfig `mapstructure:"manifest" yaml:"manifest"`
	S3       S3Config       `mapstructure:"s3" yaml:"s3"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// ManifestConfig points at the DynamoDB table compression results are
// recorded in. An empty Table disables recording.
type ManifestConfig struct {
	Table    string `mapstructure:"table" yaml:"table"`
	Region   string `mapstructure:"region" yaml:"region"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

type S3Config struct {
	Region   string `mapstructure:"region" yaml:"region"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers: 0,
		OutDir:  constants.GetOutDir(),
		Server: ServerConfig{
			Addr:           constants.DefaultAddr,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   constants.MaxRequestBytes,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Manifest: ManifestConfig{
			Region: "us-east-1",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.OutDir == "" {
		errs = append(errs, errors.New("out_dir must not be empty"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	return errors.Join(errs...)
}

// Save writes c as YAML.
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// NewViper returns a viper instance with every default registered, so that
// environment overrides apply even to keys absent from the config file.
func NewViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("workers", def.Workers)
	v.SetDefault("out_dir", def.OutDir)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("server.max_body_bytes", def.Server.MaxBodyBytes)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
	v.SetDefault("manifest.table", def.Manifest.Table)
	v.SetDefault("manifest.region", def.Manifest.Region)
	v.SetDefault("manifest.endpoint", def.Manifest.Endpoint)
	v.SetDefault("s3.region", def.S3.Region)
	v.SetDefault("s3.endpoint", def.S3.Endpoint)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile into v when given and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromReader decodes a config document of the given type ("yaml", "json").
func LoadFromReader(r io.Reader, configType string) (*Config, error) {
	v := NewViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

// Watch reloads the config file whenever it changes on disk and hands every
// valid new config to onChange. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, logger *log.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Printf("config file changed: %s", e.Name)
		c, err := decode(v)
		if err != nil {
			logger.Printf("ignoring config change: %v", err)
			return
		}
		onChange(c)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	c := DefaultConfig()
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

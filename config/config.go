// Package config holds the client configuration and loads it from a
// file, the environment and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads,
// e.g. BQUERY_ENDPOINT or BQUERY_LOG_LEVEL.
const EnvPrefix = "BQUERY"

// Encoder strategies.
const (
	EncoderLocal  = "local"
	EncoderRemote = "remote"
)

// Config is the client configuration.
type Config struct {
	// Node gRPC endpoint, host:port.
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool          `mapstructure:"insecure" yaml:"insecure"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	// Expected bech32 prefix. Empty accepts any prefix.
	AddressPrefix string `mapstructure:"address_prefix" yaml:"address_prefix"`
	PageLimit     uint32 `mapstructure:"page_limit" yaml:"page_limit"`
	RequireProof  bool   `mapstructure:"require_proof" yaml:"require_proof"`
	// How transaction identifiers are computed: "local" or "remote".
	Encoder string `mapstructure:"encoder" yaml:"encoder"`
	Log     Log    `mapstructure:"log" yaml:"log"`
}

// Log configures the logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Endpoint:      "localhost:26658",
		Insecure:      true,
		DialTimeout:   10 * time.Second,
		AddressPrefix: "cosmos",
		PageLimit:     100,
		Encoder:       EncoderLocal,
		Log: Log{
			Level:  "info",
			Format: "plain",
		},
	}
}

// SetDefaults registers Default's values with v so that every key is
// known to viper, which AutomaticEnv needs to resolve nested keys.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("insecure", d.Insecure)
	v.SetDefault("dial_timeout", d.DialTimeout)
	v.SetDefault("address_prefix", d.AddressPrefix)
	v.SetDefault("page_limit", d.PageLimit)
	v.SetDefault("require_proof", d.RequireProof)
	v.SetDefault("encoder", d.Encoder)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the configuration. Values come, in increasing priority,
// from the defaults, the file at path (if path is non-empty), the
// environment and any flags already bound to v.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout))
	}
	if c.PageLimit == 0 {
		errs = append(errs, errors.New("page_limit must be positive"))
	}
	switch c.Encoder {
	case EncoderLocal, EncoderRemote:
	default:
		errs = append(errs, fmt.Errorf("unknown encoder %q", c.Encoder))
	}
	return errors.Join(errs...)
}

// Write stores c as YAML at path.
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

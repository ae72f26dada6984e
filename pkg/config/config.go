package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var valid = validator.New()

// ErrSettingsRead the --settings file could not be read or is not YAML.
var ErrSettingsRead = errors.New("settings read failed")

// EnvPrefix is prepended to every environment override (PS_NET_STATS_SERVER_ADDR -> server.addr).
const EnvPrefix = "PS_NET_STATS"

// Config exporter settings aggregated from flags, an optional settings file and the environment.
// The cluster inventory itself lives in a separate file, see LoadInventory.
type Config struct {
	Inventory string          `yaml:"config" mapstructure:"config"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Collector CollectorConfig `yaml:"collector" mapstructure:"collector"`
	SSH       SSHConfig       `yaml:"ssh" mapstructure:"ssh"`
	Log       ZapLogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig HTTP exposition settings
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	MetricsPath    string        `yaml:"metrics_path" mapstructure:"metrics_path" validate:"required,startswith=/"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"required,gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"required,gt=0"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"required,gt=0"`
	RuntimeMetrics bool          `yaml:"runtime_metrics" mapstructure:"runtime_metrics"`
}

// CollectorConfig per-scrape behaviour.
// Timeout bounds a single remote command; zero disables the bound.
type CollectorConfig struct {
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency" validate:"required,min=1,max=64"`
	SelfMetrics bool          `yaml:"self_metrics" mapstructure:"self_metrics"`
}

// SSHConfig remote execution transport
type SSHConfig struct {
	Transport             string        `yaml:"transport" mapstructure:"transport" validate:"required,oneof=exec native"`
	Binary                string        `yaml:"binary" mapstructure:"binary"`
	Port                  int           `yaml:"port" mapstructure:"port" validate:"required,min=1,max=65535"`
	ConnectTimeout        time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"required,gt=0"`
	IdentityFiles         []string      `yaml:"identity_files" mapstructure:"identity_files"`
	KnownHosts            string        `yaml:"known_hosts" mapstructure:"known_hosts"`
	InsecureIgnoreHostKey bool          `yaml:"insecure_ignore_host_key" mapstructure:"insecure_ignore_host_key"`
}

// ZapLogConfig log settings
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format    string `yaml:"format" mapstructure:"format" validate:"required,oneof=json console"`
	Path      string `yaml:"path" mapstructure:"path" validate:"required"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" validate:"required,gt=0"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" validate:"gte=0"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`
}

// NewDefaultConfig returns a fully populated Config so every flag has a sane default.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			MetricsPath:  "/metrics",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		Collector: CollectorConfig{
			Timeout:     30 * time.Second,
			Concurrency: 1,
		},
		SSH: SSHConfig{
			Transport:      "exec",
			Binary:         "ssh",
			Port:           22,
			ConnectTimeout: 10 * time.Second,
			IdentityFiles:  []string{},
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "console",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 7,
			MaxAge:    7,
		},
	}
}

// LoadConfigWithCli merges defaults, the optional --settings file, environment and flags
// (in increasing priority) and validates the result.
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	settingsFile, _ := cmd.Flags().GetString("settings")
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSettingsRead, settingsFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return decode(v, cfg)
}

// decode copies viper settings over cfg, accepting "30s" style durations and comma lists.
func decode(v *viper.Viper, cfg *Config) (*Config, error) {
	decoderConfig := &mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate runs struct tags first, then the per-section checks.
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Collector.Validate(); err != nil {
		return err
	}
	if err := c.SSH.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

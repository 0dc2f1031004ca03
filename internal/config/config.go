package config

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/validation"
)

const (
	// AppName names the config file and the user config directory.
	AppName = "rvalid"

	// EnvPrefix prefixes environment overrides, e.g. RVALID_SERVER_ADDR.
	EnvPrefix = "RVALID"

	// DefaultAddr is the default listen address of the service.
	DefaultAddr = ":8080"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "rvalid"
)

// Config is the complete service configuration.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// RuleSets lists rule set files or s3:// URIs to load at startup.
	RuleSets []string `mapstructure:"rulesets" yaml:"rulesets"`

	// S3 configures the client used for s3:// rule sets.
	S3 ruleset.S3Config `mapstructure:"s3" yaml:"s3"`

	// Validation holds the library options applied with validation.Init.
	Validation validation.Config `mapstructure:"validation" yaml:"validation"`

	// Log configures the process logger.
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// configPath stores the file the config was read from, if any.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Metrics enables the /metrics endpoint and the validation collector.
	Metrics          bool   `mapstructure:"metrics" yaml:"metrics"`
	MetricsNamespace string `mapstructure:"metrics_namespace" yaml:"metrics_namespace"`

	// AllowedOrigins restricts websocket upgrades. Empty allows same-origin
	// requests only.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.metrics_namespace", DefaultMetricsNamespace)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("rulesets", []string{})

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.force_path_style", false)

	d := validation.DefaultConfig()
	v.SetDefault("validation.register_extenders", d.RegisterExtenders)
	v.SetDefault("validation.messages_on_modified", d.MessagesOnModified)
	v.SetDefault("validation.insert_messages", d.InsertMessages)
	v.SetDefault("validation.decorate_element", d.DecorateElement)
	v.SetDefault("validation.error_class", d.ErrorClass)
	v.SetDefault("validation.error_element_class", d.ErrorElementClass)
	v.SetDefault("validation.error_message_class", d.ErrorMessageClass)
	v.SetDefault("validation.message_template", d.MessageTemplate)
	v.SetDefault("validation.parse_input_attributes", d.ParseInputAttributes)
	v.SetDefault("validation.grouping.deep", d.Grouping.Deep)
	v.SetDefault("validation.grouping.observable", d.Grouping.Observable)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// newViper returns a viper instance with the search paths, environment
// binding and defaults in place.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")

	// Search paths (in order of precedence)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// New returns the default configuration.
func New() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration. If path is empty the default locations
// are searched and a missing file is not an error; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		// explicit files are parsed by extension
		v.SetConfigType("")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load: defaults and environment only
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, verrors.New("V030").
				WithDetail("No config file at " + path).
				Wrap(err)
		default:
			return nil, verrors.New("V031").
				WithDetailf("Failed to read %s: %v", v.ConfigFileUsed(), err).
				Wrap(err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.configPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, verrors.New("V031").
			WithDetail("Failed to decode configuration: " + err.Error()).
			Wrap(err)
	}
	return &cfg, nil
}

// Path returns the file the config was read from, or "" when only
// defaults and environment were used.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks the configuration for values the service cannot use.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return verrors.New("V032").WithDetail("server.addr must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return verrors.New("V032").WithDetail("server timeouts must not be negative")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return verrors.New("V032").
			WithDetailf("log.format %q is not supported", c.Log.Format).
			WithSuggestion("Use text or json.")
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, verrors.New("V032").
			WithDetailf("log.level %q is not supported", l.Level).
			WithSuggestion("Use debug, info, warn or error.")
	}
	return level, nil
}

// NewLogger builds a logger writing to w with the configured level and
// format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Package config loads examprep settings from defaults, a YAML file, a
// .env file, EXAMPREP_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/examprep/internal/llm"
)

const envPrefix = "EXAMPREP"

// Config is the resolved application configuration.
type Config struct {
	DB        string          `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Exam      ExamConfig      `mapstructure:"exam"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is requests per second allowed on the AI endpoints.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type LLMConfig struct {
	// Provider is one of anthropic, openai, gemini, openrouter or mock.
	// Empty selects the first backend with an API key, else mock.
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ExamConfig struct {
	Questions int `mapstructure:"questions"`
}

type AnalyticsConfig struct {
	WeekStart string `mapstructure:"week_start"`
}

// Options says where to look besides the defaults.
type Options struct {
	// File is an explicit config file. When empty, config.yaml is looked
	// up in the user config directory and the working directory.
	File string
	// EnvFile is loaded into the process environment if it exists.
	EnvFile string
	// Flags are bound by name: db, log-level, log-format, addr.
	Flags *pflag.FlagSet
}

var flagKeys = map[string]string{
	"db":         "db",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
	"addr":       "server.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 1.0)
	v.SetDefault("server.burst", 3)
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("exam.questions", 10)
	v.SetDefault("analytics.week_start", "sunday")
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "examprep"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if c.Exam.Questions < 1 || c.Exam.Questions > 50 {
		return fmt.Errorf("exam.questions must be between 1 and 50, got %d", c.Exam.Questions)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	return nil
}

var weekdays = map[string]time.Weekday{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		weekdays[name] = d
		weekdays[name[:3]] = d
	}
}

// WeekStart parses analytics.week_start.
func (c *Config) WeekStart() (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(c.Analytics.WeekStart))]
	if !ok {
		return time.Sunday, fmt.Errorf("analytics.week_start: unknown weekday %q", c.Analytics.WeekStart)
	}
	return d, nil
}

// LLMProviderConfig builds the llm package configuration. Vendor API key
// variables fill any backend without an explicit key.
func (c *Config) LLMProviderConfig() (llm.Config, error) {
	out := llm.DefaultConfig()
	out.FillKeysFromEnv()
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	if c.LLM.Provider == "" {
		out.Discover()
		return out, out.Validate()
	}
	if err := out.Select(c.LLM.Provider, c.LLM.Model, c.LLM.APIKey); err != nil {
		return llm.Config{}, err
	}
	if c.LLM.BaseURL != "" {
		if b := out.Backend(out.Provider); b != nil {
			b.BaseURL = c.LLM.BaseURL
		}
	}
	return out, out.Validate()
}

// DefaultLogFile is examprep.log under the XDG state directory.
func DefaultLogFile() (string, error) {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "examprep", "examprep.log"), nil
}

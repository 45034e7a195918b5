package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config carries tool locations and collection tunables. Values resolve in
// the usual order: flags, then CLRDIAG_* environment variables, then the
// config file, then defaults.
type Config struct {
	CountersTool string `mapstructure:"counters-tool"`
	GCDumpTool   string `mapstructure:"gcdump-tool"`
	DumpTool     string `mapstructure:"dump-tool"`
	TraceTool    string `mapstructure:"trace-tool"`

	IntervalMS   int `mapstructure:"interval"`
	TopN         int `mapstructure:"top-n"`
	TraceSeconds int `mapstructure:"trace-seconds"`
}

// Load reads ~/.config/clrdiag/config.yaml (if present) and binds the given
// flag set on top of it. A missing config file is not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("counters-tool", "dotnet-counters")
	v.SetDefault("gcdump-tool", "dotnet-gcdump")
	v.SetDefault("dump-tool", "dotnet-dump")
	v.SetDefault("trace-tool", "dotnet-trace")
	v.SetDefault("interval", 1000)
	v.SetDefault("top-n", 10)
	v.SetDefault("trace-seconds", 10)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "clrdiag"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLRDIAG")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return conf, nil
}

func (c *Config) GetInterval() time.Duration {
	if c.IntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.IntervalMS) * time.Millisecond
}

func (c *Config) GetTraceDuration() time.Duration {
	if c.TraceSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TraceSeconds) * time.Second
}

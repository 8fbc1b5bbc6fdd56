// Package config loads the quiver server configuration from a YAML file,
// environment variables, and flags, in that order of increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quiver-mcp/quiver/pkg/cluster"
	"github.com/quiver-mcp/quiver/pkg/ratelimit"
)

// Defaults applied when the configuration leaves fields unset.
const (
	DefaultHost = "localhost"
	DefaultPort = "6444"
	DefaultURL  = "http://localhost:6333"
)

// RateLimitConfig configures the per-tool sliding window.
type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"maxRequests"`
	Window      time.Duration `mapstructure:"window"`
}

// QdrantConfig is the base backend connection used for the default cluster.
type QdrantConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"apiKey"`
}

// Config is the full server configuration.
type Config struct {
	// Host and Port are the listen address of the MCP endpoint.
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`

	// Qdrant is the base backend the fallback profile is derived from.
	Qdrant QdrantConfig `mapstructure:"qdrant"`

	// DefaultCluster optionally names the profile that starts active.
	DefaultCluster string `mapstructure:"defaultCluster"`

	// Clusters are the declared connection profiles.
	Clusters []cluster.Profile `mapstructure:"clusters"`

	// RateLimit configures the sliding-window limiter.
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// Load reads the configuration. When path is empty, a config file named
// quiver.yaml is looked up in the working directory and is optional;
// environment variables prefixed QUIVER_ override file values either way.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("qdrant.url", DefaultURL)
	v.SetDefault("qdrant.apiKey", "")
	v.SetDefault("rateLimit.maxRequests", ratelimit.DefaultMaxRequests)
	v.SetDefault("rateLimit.window", ratelimit.DefaultWindow)

	v.SetEnvPrefix("QUIVER")
	// Nested keys use dots internally but underscores in env names, so
	// qdrant.url is overridden by QUIVER_QDRANT_URL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("quiver")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine; anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// ClusterConfig converts the loaded configuration into the registry's base
// configuration.
func (c *Config) ClusterConfig() cluster.Config {
	return cluster.Config{
		URL:            c.Qdrant.URL,
		APIKey:         c.Qdrant.APIKey,
		DefaultCluster: c.DefaultCluster,
	}
}

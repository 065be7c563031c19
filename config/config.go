// Package config loads deltad's process configuration from a YAML
// file and DELTAD_-prefixed environment variables via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting deltad needs to start.
type Config struct {
	Running struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"running"`
	Redis struct {
		Addr        string        `mapstructure:"addr"`
		Password    string        `mapstructure:"password"`
		PresenceTTL time.Duration `mapstructure:"presence_ttl"`
	} `mapstructure:"redis"`
	Firestore struct {
		ProjectID string `mapstructure:"project_id"`
	} `mapstructure:"firestore"`
	Cache struct {
		FlushInterval time.Duration `mapstructure:"flush_interval"`
	} `mapstructure:"cache"`
}

// Load reads deltad.yaml from the given search paths (falling back to
// environment variables and defaults when no file is found) and
// returns the populated Config.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("deltad")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("DELTAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("running.addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.presence_ttl", 30*time.Second)
	v.SetDefault("firestore.project_id", "")
	v.SetDefault("cache.flush_interval", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/layer-3/tollgate/core"
)

// Config is the full service configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Redis     RedisConfig      `yaml:"redis"`
	Ledger    LedgerConfig     `yaml:"ledger"`
	Session   SessionConfig    `yaml:"session"`
	Challenge ChallengeConfig  `yaml:"challenge"`
	Access    AccessConfig     `yaml:"access"`
	Purchase  []PurchaseConfig `yaml:"purchase_options"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type LedgerConfig struct {
	RPCURL         string `yaml:"rpc_url"`
	Contract       string `yaml:"contract"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SessionConfig struct {
	TTLSeconds   int  `yaml:"ttl_seconds"`
	CookieSecure bool `yaml:"cookie_secure"`
}

type ChallengeConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// AccessConfig is the path→requirement table plus the gate's path classes
type AccessConfig struct {
	Exact       map[string]core.TokenRequirement `yaml:"exact"`
	Prefixes    map[string]core.TokenRequirement `yaml:"prefixes"`
	Default     core.TokenRequirement            `yaml:"default"`
	Excluded    []string                         `yaml:"excluded"`
	APIPrefixes []string                         `yaml:"api_prefixes"`
}

// PurchaseConfig is one advertised way to acquire the access token. Price is
// a decimal string, parsed at wiring time.
type PurchaseConfig struct {
	Method   string `yaml:"method"`
	Provider string `yaml:"provider"`
	URL      string `yaml:"url"`
	Price    string `yaml:"price"`
}

// Default returns the configuration used when no file is provided
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":9000"},
		Redis:     RedisConfig{URL: "redis://localhost:6379/0"},
		Ledger:    LedgerConfig{TimeoutSeconds: 10},
		Session:   SessionConfig{TTLSeconds: int(core.DefaultSessionTTL.Seconds())},
		Challenge: ChallengeConfig{TTLSeconds: int(core.DefaultChallengeTTL.Seconds())},
		Access: AccessConfig{
			Default: core.TokenRequirement{TokenID: 0, Amount: 1},
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Session.TTLSeconds <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cfg.Challenge.TTLSeconds <= 0 {
		return nil, fmt.Errorf("challenge ttl must be positive")
	}

	return cfg, nil
}

// SessionTTL returns the session token lifetime
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

// ChallengeTTL returns the challenge lifetime
func (c *Config) ChallengeTTL() time.Duration {
	return time.Duration(c.Challenge.TTLSeconds) * time.Second
}

// LedgerTimeout returns the per-call ledger deadline
func (c *Config) LedgerTimeout() time.Duration {
	return time.Duration(c.Ledger.TimeoutSeconds) * time.Second
}

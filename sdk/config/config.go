// Package config loads bot client settings from an HCL file, a .env file and
// POKERBOT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/pokerbots/sdk"
)

// Environment variable names read by Load and FromEnv
const (
	// EnvServer is the match server address: host:port, tcp://host:port or a ws:// URL
	EnvServer = "POKERBOT_SERVER"

	// EnvWorkers sets the decision worker pool size, 1 to 16
	EnvWorkers = "POKERBOT_WORKERS"

	// EnvSeed provides a random seed for deterministic testing
	EnvSeed = "POKERBOT_SEED"

	// EnvBotID provides a unique identifier for the bot
	EnvBotID = "POKERBOT_BOT_ID"

	// EnvStrategy selects a built-in bot
	EnvStrategy = "POKERBOT_STRATEGY"

	EnvDecisionBudget = "POKERBOT_DECISION_BUDGET"
	EnvTimeoutPolicy  = "POKERBOT_TIMEOUT_POLICY"
	EnvCacheSize      = "POKERBOT_CACHE_SIZE"
	EnvLogLevel       = "POKERBOT_LOG_LEVEL"
	EnvMetricsAddr    = "POKERBOT_METRICS_ADDR"
)

// BotConfig holds the client settings
type BotConfig struct {
	// Server is the match server address
	Server string `hcl:"server,optional"`

	// Workers is the decision worker pool size
	Workers int `hcl:"workers,optional"`

	// Seed is the random seed for deterministic behaviour (0 means not set)
	Seed int64 `hcl:"seed,optional"`

	// BotID names this bot in logs
	BotID string `hcl:"bot_id,optional"`

	// Strategy selects a built-in bot
	Strategy string `hcl:"strategy,optional"`

	// DecisionBudget caps each decision, e.g. "500ms"
	DecisionBudget string `hcl:"decision_budget,optional"`

	// TimeoutPolicy is "fold" or "fail"
	TimeoutPolicy string `hcl:"timeout_policy,optional"`

	// CacheSize is the hand evaluation cache size; 0 disables the cache
	CacheSize int `hcl:"cache_size,optional"`

	LogLevel    string `hcl:"log_level,optional"`
	MetricsAddr string `hcl:"metrics_addr,optional"`
}

type fileConfig struct {
	Bot *BotConfig `hcl:"bot,block"`
}

// Default returns the settings used when nothing is configured.
func Default() *BotConfig {
	return &BotConfig{
		Server:         "localhost:9000",
		Workers:        4,
		Strategy:       "strength",
		DecisionBudget: sdk.DefaultDecisionBudget.String(),
		TimeoutPolicy:  sdk.TimeoutFold.String(),
		CacheSize:      65536,
		LogLevel:       "info",
	}
}

// Load reads path (if not empty) over the defaults, then applies the
// environment. A named file that does not exist is an error.
func Load(path string) (*BotConfig, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv parses configuration from environment variables over the defaults.
func FromEnv() (*BotConfig, error) {
	return Load("")
}

// LoadDotEnv loads variables from the given .env files without overriding
// ones already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %s: %v", sdk.ErrConfiguration, f, err)
		}
	}
	return nil
}

func (c *BotConfig) loadFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("%w: failed to parse HCL file: %s", sdk.ErrConfiguration, diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("%w: failed to decode HCL: %s", sdk.ErrConfiguration, diags.Error())
	}
	if fc.Bot != nil {
		c.merge(fc.Bot)
	}
	return nil
}

// merge copies the fields set in o.
func (c *BotConfig) merge(o *BotConfig) {
	if o.Server != "" {
		c.Server = o.Server
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.BotID != "" {
		c.BotID = o.BotID
	}
	if o.Strategy != "" {
		c.Strategy = o.Strategy
	}
	if o.DecisionBudget != "" {
		c.DecisionBudget = o.DecisionBudget
	}
	if o.TimeoutPolicy != "" {
		c.TimeoutPolicy = o.TimeoutPolicy
	}
	if o.CacheSize != 0 {
		c.CacheSize = o.CacheSize
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
}

// ApplyEnv overrides fields from the environment.
func (c *BotConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, bits int, set func(int64)) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, bits)
		if err != nil {
			return fmt.Errorf("%w: invalid %s value: %v", sdk.ErrConfiguration, key, err)
		}
		set(n)
		return nil
	}

	str(EnvServer, &c.Server)
	str(EnvBotID, &c.BotID)
	str(EnvStrategy, &c.Strategy)
	str(EnvDecisionBudget, &c.DecisionBudget)
	str(EnvTimeoutPolicy, &c.TimeoutPolicy)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvMetricsAddr, &c.MetricsAddr)

	if err := integer(EnvWorkers, 32, func(n int64) { c.Workers = int(n) }); err != nil {
		return err
	}
	if err := integer(EnvSeed, 64, func(n int64) { c.Seed = n }); err != nil {
		return err
	}
	return integer(EnvCacheSize, 32, func(n int64) { c.CacheSize = int(n) })
}

// Validate checks the settings Run depends on.
func (c *BotConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("%w: %s is required", sdk.ErrConfiguration, EnvServer)
	}
	if c.Workers < 1 || c.Workers > sdk.MaxWorkers {
		return fmt.Errorf("%w: workers must be between 1 and %d, got %d", sdk.ErrConfiguration, sdk.MaxWorkers, c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: negative cache size %d", sdk.ErrConfiguration, c.CacheSize)
	}
	if _, err := c.Budget(); err != nil {
		return err
	}
	if _, err := sdk.ParseTimeoutPolicy(c.TimeoutPolicy); err != nil {
		return err
	}
	return nil
}

// Budget parses DecisionBudget.
func (c *BotConfig) Budget() (time.Duration, error) {
	d, err := time.ParseDuration(c.DecisionBudget)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid decision budget %q", sdk.ErrConfiguration, c.DecisionBudget)
	}
	return d, nil
}

// RunOptions converts the settings into options for sdk.Run.
func (c *BotConfig) RunOptions() ([]sdk.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	budget, _ := c.Budget()
	policy, _ := sdk.ParseTimeoutPolicy(c.TimeoutPolicy)
	opts := []sdk.Option{sdk.WithDecisionBudget(budget), sdk.WithTimeoutPolicy(policy)}

	if c.CacheSize > 0 {
		eval, err := sdk.NewCachedEvaluator(c.CacheSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdk.WithEvaluator(eval))
	}
	return opts, nil
}

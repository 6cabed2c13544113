package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerbots/internal/game"
)

// ServerConfig represents the complete dealer configuration
type ServerConfig struct {
	Server   ServerSettings    `hcl:"server,block"`
	Match    *MatchSettings    `hcl:"match,block"`
	Opponent *OpponentSettings `hcl:"opponent,block"`
}

// ServerSettings contains listener configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	HTTPPort int    `hcl:"http_port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// MatchSettings defines the match played against every client
type MatchSettings struct {
	Rounds        int    `hcl:"rounds,optional"`
	StartingStack int    `hcl:"starting_stack,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	TimeBank      string `hcl:"time_bank,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// OpponentSettings selects the house player
type OpponentSettings struct {
	Strategy string `hcl:"strategy,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	m := DefaultMatchConfig()
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     9000,
			LogLevel: "info",
		},
		Match: &MatchSettings{
			Rounds:        m.Rounds,
			StartingStack: m.Rules.StartingStack,
			SmallBlind:    m.Rules.SmallBlind,
			BigBlind:      m.Rules.BigBlind,
			TimeBank:      m.TimeBank.String(),
		},
		Opponent: &OpponentSettings{Strategy: "calling"},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	d := DefaultServerConfig()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = d.Server.LogLevel
	}

	if c.Match == nil {
		c.Match = d.Match
	}
	if c.Match.Rounds == 0 {
		c.Match.Rounds = d.Match.Rounds
	}
	if c.Match.StartingStack == 0 {
		c.Match.StartingStack = d.Match.StartingStack
	}
	if c.Match.SmallBlind == 0 {
		c.Match.SmallBlind = d.Match.SmallBlind
	}
	if c.Match.BigBlind == 0 {
		c.Match.BigBlind = c.Match.SmallBlind * 2
	}
	if c.Match.TimeBank == "" {
		c.Match.TimeBank = d.Match.TimeBank
	}

	if c.Opponent == nil {
		c.Opponent = d.Opponent
	}
	if c.Opponent.Strategy == "" {
		c.Opponent.Strategy = d.Opponent.Strategy
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if _, err := c.MatchConfig(); err != nil {
		return err
	}
	if _, err := NewOpponent(c.Opponent.Strategy, 0); err != nil {
		return err
	}
	return nil
}

// MatchConfig converts the match block.
func (c *ServerConfig) MatchConfig() (MatchConfig, error) {
	m := c.Match
	if m.Rounds <= 0 {
		return MatchConfig{}, fmt.Errorf("rounds must be positive, got %d", m.Rounds)
	}
	bank, err := time.ParseDuration(m.TimeBank)
	if err != nil || bank <= 0 {
		return MatchConfig{}, fmt.Errorf("invalid time bank %q", m.TimeBank)
	}
	rules := game.Rules{StartingStack: m.StartingStack, SmallBlind: m.SmallBlind, BigBlind: m.BigBlind}
	if err := rules.Validate(); err != nil {
		return MatchConfig{}, err
	}
	return MatchConfig{Rounds: m.Rounds, Rules: rules, TimeBank: bank, Seed: m.Seed}, nil
}

// GetServerAddress returns the TCP listen address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetHTTPAddress returns the websocket listen address, or "" when disabled
func (c *ServerConfig) GetHTTPAddress() string {
	if c.Server.HTTPPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.HTTPPort)
}

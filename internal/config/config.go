// Package config loads the finsight configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/szaher/finsight/internal/mcp"
)

// Rule is an answer-quality rule evaluated against the final answer.
type Rule struct {
	Name       string `yaml:"name"`
	Expr       string `yaml:"expr"`
	Message    string `yaml:"message"`
	Severity   string `yaml:"severity"` // "error" or "warning"
	MaxRetries int    `yaml:"max_retries"`
}

// Config is the full finsight configuration.
type Config struct {
	Model       string             `yaml:"model"`
	System      string             `yaml:"system"`
	MaxTokens   int                `yaml:"max_tokens"`
	TokenBudget int                `yaml:"token_budget"`
	Servers     []mcp.ServerConfig `yaml:"servers"`
	OutputDir   string             `yaml:"output_dir"`
	MetricsAddr string             `yaml:"metrics_addr"`
	Rules       []Rule             `yaml:"rules"`
}

// DefaultSystem is the system prompt used when the config does not set one.
const DefaultSystem = "You are a research assistant. Use the available tools to gather facts, " +
	"cite sources by URL, and answer with concrete data."

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:     "claude-sonnet-4-20250514",
		System:    DefaultSystem,
		MaxTokens: 4096,
		OutputDir: "reports",
	}
}

// Load reads and parses the configuration file at path. Missing fields fall
// back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	for i, srv := range c.Servers {
		if srv.Name == "" {
			return fmt.Errorf("servers[%d]: name must not be empty", i)
		}
		switch srv.Transport {
		case "", "stdio":
			if srv.Command == "" {
				return fmt.Errorf("servers[%d] (%s): command must not be empty", i, srv.Name)
			}
		default:
			return fmt.Errorf("servers[%d] (%s): unsupported transport %q", i, srv.Name, srv.Transport)
		}
	}
	for i, r := range c.Rules {
		if r.Expr == "" {
			return fmt.Errorf("rules[%d]: expr must not be empty", i)
		}
		switch r.Severity {
		case "", "error", "warning":
		default:
			return fmt.Errorf("rules[%d] (%s): unknown severity %q", i, r.Name, r.Severity)
		}
	}
	return nil
}

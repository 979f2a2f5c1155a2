// Package config handles clipwire configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level clipwire configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Pages     []PageConfig    `yaml:"pages"`
	Buttons   ButtonConfig    `yaml:"buttons"`
	Feedback  Feedback        `yaml:"feedback"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Sinks     []SinkConfig    `yaml:"sinks"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome.
	Remote          string        `yaml:"remote"`
	RecycleInterval time.Duration `yaml:"recycle_interval"`
	Stealth         string        `yaml:"stealth"` // headless | headful
}

// PageConfig defines a page whose buttons get activated.
type PageConfig struct {
	ID             string        `yaml:"id"`
	URL            string        `yaml:"url"`
	RescanInterval time.Duration `yaml:"rescan_interval"` // 0 = bind once
}

// ButtonConfig is the markup contract: which attributes mark an element as a
// copy button and reference its target.
type ButtonConfig struct {
	// MarkerAttr/MarkerValue select eligible elements
	// (default [data-toggle="clipboard"]).
	MarkerAttr  string `yaml:"marker_attr"`
	MarkerValue string `yaml:"marker_value"`

	// TargetAttr holds the selector of the copy source
	// (default data-clipboard-target).
	TargetAttr string `yaml:"target_attr"`

	// BindAttr is stamped onto bound buttons; its presence is what makes
	// binding idempotent (default data-clipwire-id).
	BindAttr string `yaml:"bind_attr"`
}

// ClipboardConfig selects write backends and payload rendering.
type ClipboardConfig struct {
	Writers  []string `yaml:"writers"`  // page | system
	Format   string   `yaml:"format"`   // text | markdown
	Sanitize bool     `yaml:"sanitize"` // clean HTML before markdown conversion
}

// SinkConfig defines an output backend for activation records.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | store
	URL  string `yaml:"url"`  // for webhook
	Path string `yaml:"path"` // for store (sqlite database file)
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Buttons.MarkerAttr == "" {
		c.Buttons.MarkerAttr = "data-toggle"
	}
	if c.Buttons.MarkerValue == "" {
		c.Buttons.MarkerValue = "clipboard"
	}
	if c.Buttons.TargetAttr == "" {
		c.Buttons.TargetAttr = "data-clipboard-target"
	}
	if c.Buttons.BindAttr == "" {
		c.Buttons.BindAttr = "data-clipwire-id"
	}
	if len(c.Clipboard.Writers) == 0 {
		c.Clipboard.Writers = []string{"page"}
	}
	if c.Clipboard.Format == "" {
		c.Clipboard.Format = "text"
	}
	c.Feedback.ApplyDefaults()
}

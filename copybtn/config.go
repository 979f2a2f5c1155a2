package copybtn

import (
	"net/url"

	"github.com/clipwire/clipwire/copybtn/internal/config"
)

// Config is the top-level clipwire configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// PageConfig defines a page whose buttons get activated.
type PageConfig = config.PageConfig

// ButtonConfig is the markup contract (marker / target / bind attributes).
type ButtonConfig = config.ButtonConfig

// Feedback is the text/style mapping applied per activation outcome.
type Feedback = config.Feedback

// ClassChange is the add/remove style-tag pair for one outcome.
type ClassChange = config.ClassChange

// ClipboardConfig selects write backends and payload rendering.
type ClipboardConfig = config.ClipboardConfig

// SinkConfig defines an output backend for activation records.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultFeedback returns the stock feedback mapping.
func DefaultFeedback() Feedback {
	return config.DefaultFeedback()
}

// originOf reduces a page URL to its origin for permission grants.
func originOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" {
		return pageURL
	}
	return u.Scheme + "://" + u.Host
}

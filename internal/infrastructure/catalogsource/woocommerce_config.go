// Package catalogsource provides the adapter materializing catalog snapshots
// from the source commerce system's REST API.
package catalogsource

import (
	"errors"
	"strings"
)

// Default settings for the source system client
const (
	defaultPageSize       = 100
	defaultTimeoutSeconds = 30
	maxPageSize           = 100
)

// Configuration validation errors
var (
	ErrSourceConfigMissingURL         = errors.New("catalog source base URL is required")
	ErrSourceConfigMissingCredentials = errors.New("catalog source consumer key and secret are required")
)

// WooCommerceConfig holds the source system connection settings
type WooCommerceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	TimeoutSeconds int
}

// NewWooCommerceConfig creates a config with the given credentials
func NewWooCommerceConfig(baseURL, consumerKey, consumerSecret string) *WooCommerceConfig {
	return &WooCommerceConfig{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
	}
}

// Validate checks required fields and fills defaults
func (c *WooCommerceConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrSourceConfigMissingURL
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrSourceConfigMissingCredentials
	}
	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		c.PageSize = defaultPageSize
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// APIBase returns the REST API root of the source system
func (c *WooCommerceConfig) APIBase() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/wp-json/wc/v3"
}

// Package ecommerce contains destination platform adapters.
package ecommerce

import (
	"errors"
	"fmt"
	"strings"
)

// ShopifyConfig holds configuration for the Shopify Admin GraphQL API
type ShopifyConfig struct {
	// ShopDomain is the myshopify domain of the destination store
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the pinned Admin API version
	APIVersion string
	// TimeoutSeconds is the HTTP timeout for API calls
	TimeoutSeconds int
	// UploadTimeoutSeconds is the HTTP timeout for the staged file transfer,
	// longer than API calls because it streams the whole payload
	UploadTimeoutSeconds int
}

// ShopifyDefaultAPIVersion is the Admin API version requests are pinned to
const ShopifyDefaultAPIVersion = "2025-04"

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingToken  = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(shopDomain, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:           shopDomain,
		AccessToken:          accessToken,
		APIVersion:           ShopifyDefaultAPIVersion,
		TimeoutSeconds:       30,
		UploadTimeoutSeconds: 120,
	}
}

// Validate validates the configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.UploadTimeoutSeconds <= 0 {
		c.UploadTimeoutSeconds = 120
	}
	return nil
}

// GraphQLEndpoint returns the versioned Admin API endpoint. A shop domain
// carrying an explicit scheme is used as-is, which lets local setups target a
// plain HTTP endpoint.
func (c *ShopifyConfig) GraphQLEndpoint() string {
	domain := strings.TrimSuffix(c.ShopDomain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", domain, c.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, c.APIVersion)
}

package shippo

import (
	"errors"
	"time"
)

const (
	// ProductionAPIURL is the production API endpoint
	ProductionAPIURL = "https://api.goshippo.com"

	// DefaultPageSize matches the platform's own default page size
	DefaultPageSize = 25

	// MaxPageSize is the largest page the platform serves
	MaxPageSize = 100
)

// Errors for Shippo configuration
var (
	ErrConfigMissingToken = errors.New("shippo: api token is required")
	ErrConfigPageSize     = errors.New("shippo: page size must be between 1 and 100")
)

// Config holds configuration for the Shippo API client
type Config struct {
	// APIToken authenticates every request ("ShippoToken <token>")
	APIToken string
	// BaseURL is the API root, without a trailing slash
	BaseURL string
	// PageSize is the number of results requested per page
	PageSize int
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// MaxPages stops runaway pagination; zero means no limit
	MaxPages int
}

// NewConfig creates a configuration with defaults for the given token
func NewConfig(apiToken string) *Config {
	return &Config{
		APIToken: apiToken,
		BaseURL:  ProductionAPIURL,
		PageSize: DefaultPageSize,
		Timeout:  30 * time.Second,
		MaxPages: 1000,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.APIToken == "" {
		return ErrConfigMissingToken
	}
	if c.BaseURL == "" {
		c.BaseURL = ProductionAPIURL
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return ErrConfigPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

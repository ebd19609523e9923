package fulfillment

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultTimeout         = 10 * time.Second
	DefaultMaxResponseSize = 10 << 20
)

var (
	ErrConfigInvalidBaseURL = errors.New("fulfillment: base URL must be an absolute http(s) URL")
	ErrConfigInvalidTimeout = errors.New("fulfillment: timeout cannot be negative")
)

// Config holds the engine client settings
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxResponseSize int64
}

// Validate fills in defaults and checks the base URL
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	if c.Timeout < 0 {
		return ErrConfigInvalidTimeout
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	return nil
}

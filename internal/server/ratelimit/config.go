package ratelimit

import (
	"net/http"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultConfig returns limits suited to the apply API.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Every apply
// request drives a real browser, so those routes get the strictest limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/v1/apply", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/v1/apply/batch", Method: http.MethodPost, Limit: 5, Window: time.Hour, Burst: 1},
		{Path: "/v1/answers", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/v1/users/", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// WithLists returns a copy of c using the given allow and deny lists.
func (c Config) WithLists(whitelist, blacklist []string) *Config {
	c.Whitelist = toSet(whitelist)
	c.Blacklist = toSet(blacklist)
	return &c
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			out[item] = true
		}
	}
	return out
}

package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends in "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key names the bucket a request to path falls into.
func (c *EndpointConfig) key(path string) string {
	if c.Path != "" {
		return c.Path
	}
	return path
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
// Values that do not parse fall back to their defaults.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("RATE_LIMIT")
	v.AutomaticEnv()

	if !envOr(v, "enabled", true, cast.ToBoolE) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr(v, "default_limit", 600, cast.ToIntE),
		DefaultWindow:   envOr(v, "default_window", time.Minute, cast.ToDurationE),
		CleanupInterval: envOr(v, "cleanup_interval", 5*time.Minute, cast.ToDurationE),
		IdleTTL:         envOr(v, "idle_ttl", time.Hour, cast.ToDurationE),
		Whitelist:       parseIPList(v.GetString("whitelist")),
		Blacklist:       parseIPList(v.GetString("blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential endpoints (strictest limits)
		{Path: "/auth/register", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
		{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/password", Method: "PUT", Limit: 10, Window: time.Minute, Burst: 3},

		// Writes
		{Path: "/companies", Method: "POST", Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/companies/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/companies/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/companies/", Method: "DELETE", Limit: 50, Window: time.Minute, Burst: 10},

		// Reads fall back to the default limit
	}
}

// envOr converts the value of key with conv, returning def when it is unset or does not parse.
func envOr[T any](v *viper.Viper, key string, def T, conv func(any) (T, error)) T {
	raw := v.Get(key)
	if raw == nil {
		return def
	}
	val, err := conv(raw)
	if err != nil {
		return def
	}
	return val
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

package config

import (
	"net/url"
	"slices"

	"github.com/agentstation/locsync/pkg/errors"
)

var (
	authModes  = []string{"basic", "apikey"}
	logLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled"}
	logFormats = []string{"auto", "json", "console", "pretty"}
)

// Validate checks everything a sync needs and reports every bad key at once.
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateTarget checks only what flush and restore need; the source may be
// left unconfigured.
func (c *Config) ValidateTarget() error {
	return c.validate(false)
}

func (c *Config) validate(needSource bool) error {
	var keys []string
	bad := func(cond bool, key string) {
		if cond {
			keys = append(keys, key)
		}
	}

	if needSource {
		sn := c.ServiceNow
		bad(sn.Endpoint == "", "servicenow.endpoint")
		bad(sn.AuthMode != "apikey" && sn.Username == "", "servicenow.username")
		bad(sn.Token == "", "servicenow.token")
		bad(!slices.Contains(authModes, sn.AuthMode), "servicenow.auth_mode")
		bad(sn.Table == "", "servicenow.table")
		bad(sn.Field == "", "servicenow.field")
		bad(sn.Limit <= 0, "servicenow.limit")
		bad(sn.PageSize <= 0, "servicenow.page_size")
		bad(!validURL(sn.Proxy, true), "servicenow.proxy")
	}

	ib := c.Infoblox
	bad(ib.Endpoint == "" || !validURL(ib.Endpoint, false), "infoblox.endpoint")
	bad(ib.Username == "", "infoblox.username")
	bad(ib.Password == "", "infoblox.password")
	bad(ib.Attribute == "", "infoblox.attribute")
	bad(!validURL(ib.Proxy, true), "infoblox.proxy")

	bad(c.HTTP.Timeout <= 0, "http.timeout")
	bad(c.HTTP.MaxRetries < 0, "http.max_retries")
	bad(c.HTTP.RateLimit < 0, "http.rate_limit")

	bad(c.Sync.MaxLength <= 0, "sync.max_length")
	bad(c.Sync.MinValues < 0, "sync.min_values")
	bad(c.Sync.Placeholder == "", "sync.placeholder")

	bad(c.Snapshot.S3Bucket == "" && (c.Snapshot.S3Endpoint != "" || c.Snapshot.S3Prefix != ""), "snapshot.s3_bucket")
	bad(!validURL(c.Metrics.PushgatewayURL, true), "metrics.pushgateway_url")

	bad(!slices.Contains(logLevels, c.Log.Level), "log.level")
	bad(!slices.Contains(logFormats, c.Log.Format), "log.format")

	if len(keys) == 0 {
		return nil
	}
	return &errors.ConfigError{
		Component: "config",
		Keys:      keys,
		Message:   "missing or invalid settings",
	}
}

// validURL reports whether s is an absolute http(s) URL. The Infoblox
// endpoint must carry its scheme; the ServiceNow one may omit it.
func validURL(s string, optional bool) bool {
	if s == "" {
		return optional
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

package config

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/locsync/internal/infoblox"
	"github.com/agentstation/locsync/internal/servicenow"
	"github.com/agentstation/locsync/internal/snapshot"
	"github.com/agentstation/locsync/internal/transport"
	"github.com/agentstation/locsync/pkg/logging"
)

// Transport returns the shared HTTP settings with the given proxy.
func (c *Config) Transport(proxy string, logger *zerolog.Logger) transport.Config {
	return transport.Config{
		Timeout:    c.HTTP.Timeout,
		VerifyTLS:  c.TLS.Verify,
		ProxyURL:   proxy,
		MaxRetries: c.HTTP.MaxRetries,
		RateLimit:  c.HTTP.RateLimit,
		Logger:     logger,
	}
}

// ServiceNowClient returns the source client settings.
func (c *Config) ServiceNowClient() servicenow.Config {
	sn := c.ServiceNow
	return servicenow.Config{
		Endpoint: sn.Endpoint,
		Username: sn.Username,
		Token:    sn.Token,
		AuthMode: sn.AuthMode,
		Table:    sn.Table,
		Query:    sn.Query,
		Field:    sn.Field,
		Limit:    sn.Limit,
		PageSize: sn.PageSize,
	}
}

// InfobloxClient returns the target client settings.
func (c *Config) InfobloxClient() infoblox.Config {
	return infoblox.Config{
		Endpoint: c.Infoblox.Endpoint,
		Username: c.Infoblox.Username,
		Password: c.Infoblox.Password,
	}
}

// S3 returns the S3 snapshot settings, or false when no bucket is set.
func (c *Config) S3() (snapshot.S3Config, bool) {
	s := c.Snapshot
	if s.S3Bucket == "" {
		return snapshot.S3Config{}, false
	}
	return snapshot.S3Config{
		Bucket:    s.S3Bucket,
		Region:    s.S3Region,
		Endpoint:  s.S3Endpoint,
		Prefix:    s.S3Prefix,
		PathStyle: s.S3PathStyle,
	}, true
}

// Logging returns the logger settings.
func (c *Config) Logging() *logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Dir = c.Log.Dir
	return lc
}

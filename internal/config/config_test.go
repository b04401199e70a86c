package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/locsync/pkg/errors"
)

const sampleYAML = `
servicenow:
  endpoint: acme.service-now.com
  username: svc-locsync
  token: from-file
  page_size: 250
infoblox:
  endpoint: https://gm.example.com/wapi/v2.12
  username: admin
  password: infoblox
http:
  timeout: 45s
sync:
  min_values: 10
`

// load runs Load without touching the caller's working directory or home.
func load(t *testing.T, file string) *Config {
	t.Helper()
	cfg, err := Load(Options{File: file, SearchPaths: []string{}, EnvFiles: []string{}})
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, "")

	assert.Equal(t, "cmn_location", cfg.ServiceNow.Table)
	assert.Equal(t, "cmn_location_typeINcountry,city,campus", cfg.ServiceNow.Query)
	assert.Equal(t, "name", cfg.ServiceNow.Field)
	assert.Equal(t, "basic", cfg.ServiceNow.AuthMode)
	assert.Equal(t, 10000, cfg.ServiceNow.Limit)
	assert.Equal(t, "Location", cfg.Infoblox.Attribute)
	assert.False(t, cfg.TLS.Verify)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
	assert.Equal(t, 64, cfg.Sync.MaxLength)
	assert.Equal(t, 0, cfg.Sync.MinValues)
	assert.Equal(t, "CLEARED", cfg.Sync.Placeholder)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ".", cfg.Log.Dir)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "locsync.yaml", sampleYAML)
	cfg := load(t, path)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "acme.service-now.com", cfg.ServiceNow.Endpoint)
	assert.Equal(t, "from-file", cfg.ServiceNow.Token)
	assert.Equal(t, 250, cfg.ServiceNow.PageSize)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 10, cfg.Sync.MinValues)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "locsync.yaml", sampleYAML)
	t.Setenv("LOCSYNC_SERVICENOW_TOKEN", "from-env")
	t.Setenv("LOCSYNC_TLS_VERIFY", "true")
	t.Setenv("LOCSYNC_SYNC_MIN_VALUES", "3")

	cfg := load(t, path)
	assert.Equal(t, "from-env", cfg.ServiceNow.Token)
	assert.True(t, cfg.TLS.Verify)
	assert.Equal(t, 3, cfg.Sync.MinValues)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("SERVICENOW_API_ENDPOINT", "legacy.service-now.com")
	t.Setenv("SERVICENOW_API_USERNAME", "legacy-user")
	t.Setenv("SERVICENOW_API_TOKEN", "legacy-token")
	t.Setenv("SERVICE_NOW_API_LIMIT", "500")
	t.Setenv("SERVICENOW_PROXY", "http://proxy.example.com:3128")
	t.Setenv("INFOBLOX_API_ENDPOINT", "https://gm.example.com/wapi/v2.12")
	t.Setenv("INFOBLOX_API_USERNAME", "admin")
	t.Setenv("INFOBLOX_API_PASSWORD", "secret")
	t.Setenv("LOG_DIR", "/var/log/locsync")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := load(t, "")
	assert.Equal(t, "legacy.service-now.com", cfg.ServiceNow.Endpoint)
	assert.Equal(t, "legacy-user", cfg.ServiceNow.Username)
	assert.Equal(t, "legacy-token", cfg.ServiceNow.Token)
	assert.Equal(t, 500, cfg.ServiceNow.Limit)
	assert.Equal(t, "http://proxy.example.com:3128", cfg.ServiceNow.Proxy)
	assert.Equal(t, "secret", cfg.Infoblox.Password)
	assert.Equal(t, "/var/log/locsync", cfg.Log.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_LevelIsCaseInsensitive(t *testing.T) {
	cfg := load(t, writeFile(t, "locsync.yaml", sampleYAML))
	require.NoError(t, cfg.Validate())

	for _, level := range []string{"INFO", "Warning", " error "} {
		t.Run(level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", level)
			cfg := load(t, writeFile(t, "locsync.yaml", sampleYAML))
			assert.NoError(t, cfg.Validate())
		})
	}

	t.Setenv("LOG_LEVEL", "INFO")
	assert.Equal(t, "info", load(t, "").Log.Level)
}

// legacyYAML is a config.yaml as read by the original scripts.
const legacyYAML = `
SERVICENOW_API_ENDPOINT: legacy.service-now.com
SERVICENOW_API_USERNAME: legacy-user
SERVICENOW_API_TOKEN: legacy-token
SERVICE_NOW_API_LIMIT: 750
INFOBLOX_API_ENDPOINT: https://gm.example.com/wapi/v2.12
INFOBLOX_API_USERNAME: admin
INFOBLOX_API_PASSWORD: secret
LOG_DIR: /var/log/locsync
LOG_LEVEL: INFO
`

func TestLoad_LegacyConfigFile(t *testing.T) {
	cfg := load(t, writeFile(t, "config.yaml", legacyYAML))

	assert.Equal(t, "legacy.service-now.com", cfg.ServiceNow.Endpoint)
	assert.Equal(t, "legacy-user", cfg.ServiceNow.Username)
	assert.Equal(t, "legacy-token", cfg.ServiceNow.Token)
	assert.Equal(t, 750, cfg.ServiceNow.Limit)
	assert.Equal(t, "https://gm.example.com/wapi/v2.12", cfg.Infoblox.Endpoint)
	assert.Equal(t, "admin", cfg.Infoblox.Username)
	assert.Equal(t, "secret", cfg.Infoblox.Password)
	assert.Equal(t, "/var/log/locsync", cfg.Log.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_LegacyConfigFilePrecedence(t *testing.T) {
	content := legacyYAML + "infoblox:\n  username: dotted-user\n"
	t.Setenv("SERVICENOW_API_TOKEN", "env-token")

	cfg := load(t, writeFile(t, "config.yaml", content))
	assert.Equal(t, "dotted-user", cfg.Infoblox.Username, "dotted key in the file wins")
	assert.Equal(t, "env-token", cfg.ServiceNow.Token, "environment wins over the file")
}

func TestLoad_PrefixedEnvBeatsLegacy(t *testing.T) {
	t.Setenv("LOCSYNC_INFOBLOX_USERNAME", "new")
	t.Setenv("INFOBLOX_API_USERNAME", "old")

	cfg := load(t, "")
	assert.Equal(t, "new", cfg.Infoblox.Username)
}

func TestLoad_EnvFiles(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("LOCSYNC_TEST_INFOBLOX_ATTR=FromLocal\n"), 0600))
	require.NoError(t, os.WriteFile(base, []byte("LOCSYNC_TEST_INFOBLOX_ATTR=FromBase\nINFOBLOX_API_USERNAME=dotenv-user\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("LOCSYNC_TEST_INFOBLOX_ATTR")
		_ = os.Unsetenv("INFOBLOX_API_USERNAME")
	})

	cfg, err := Load(Options{SearchPaths: []string{}, EnvFiles: []string{local, base}})
	require.NoError(t, err)

	assert.Equal(t, "FromLocal", os.Getenv("LOCSYNC_TEST_INFOBLOX_ATTR"), ".env.local wins")
	assert.Equal(t, "dotenv-user", cfg.Infoblox.Username)
}

func TestLoad_SearchPaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "locsync.yaml")
	found := writeFile(t, "config.yaml", sampleYAML)

	cfg, err := Load(Options{SearchPaths: []string{missing, found}, EnvFiles: []string{}})
	require.NoError(t, err)
	assert.Equal(t, found, cfg.File)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml"), EnvFiles: []string{}})
	assert.True(t, errors.IsConfig(err))

	bad := writeFile(t, "bad.yaml", "servicenow: [unclosed\n")
	_, err = Load(Options{File: bad, EnvFiles: []string{}})
	assert.True(t, errors.IsConfig(err))
}

func TestValidate_CollectsAllKeys(t *testing.T) {
	cfg := load(t, "")
	cfg.ServiceNow.PageSize = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ElementsMatch(t, []string{
		"servicenow.endpoint",
		"servicenow.username",
		"servicenow.token",
		"servicenow.page_size",
		"infoblox.endpoint",
		"infoblox.username",
		"infoblox.password",
		"log.level",
	}, cfgErr.Keys)
}

func TestValidate_APIKeyModeNeedsNoUsername(t *testing.T) {
	cfg := load(t, writeFile(t, "locsync.yaml", sampleYAML))
	cfg.ServiceNow.AuthMode = "apikey"
	cfg.ServiceNow.Username = ""
	assert.NoError(t, cfg.Validate())

	cfg.ServiceNow.AuthMode = "oauth"
	assert.Error(t, cfg.Validate())
}

func TestValidateTarget(t *testing.T) {
	cfg := load(t, "")
	cfg.Infoblox.Endpoint = "https://gm.example.com/wapi/v2.12"
	cfg.Infoblox.Username = "admin"
	cfg.Infoblox.Password = "pw"

	assert.NoError(t, cfg.ValidateTarget())
	assert.Error(t, cfg.Validate(), "source settings still required for sync")
}

func TestValidate_InfobloxEndpointNeedsScheme(t *testing.T) {
	cfg := load(t, writeFile(t, "locsync.yaml", sampleYAML))
	cfg.Infoblox.Endpoint = "gm.example.com/wapi/v2.12"

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, cfg.Validate(), &cfgErr)
	assert.Equal(t, []string{"infoblox.endpoint"}, cfgErr.Keys)
}

func TestConversions(t *testing.T) {
	cfg := load(t, writeFile(t, "locsync.yaml", sampleYAML))
	cfg.Snapshot.S3Bucket = "backups"

	tc := cfg.Transport(cfg.ServiceNow.Proxy, nil)
	assert.Equal(t, 45*time.Second, tc.Timeout)
	assert.False(t, tc.VerifyTLS)

	sn := cfg.ServiceNowClient()
	assert.Equal(t, 250, sn.PageSize)
	assert.Equal(t, "svc-locsync", sn.Username)

	assert.Equal(t, "admin", cfg.InfobloxClient().Username)

	s3cfg, ok := cfg.S3()
	assert.True(t, ok)
	assert.Equal(t, "backups", s3cfg.Bucket)

	lc := cfg.Logging()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, 5, lc.MaxSizeMB)
}

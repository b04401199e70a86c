// Package config loads locsync settings from a YAML file, .env files and the
// environment into one explicitly passed Config value.
//
// Precedence, highest first: command-line flags (applied by the CLI), LOCSYNC_*
// environment variables, the legacy upper-case variables of the original
// scripts, .env.local, .env, the config file, defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "LOCSYNC"

// Config is the complete configuration of a run.
type Config struct {
	ServiceNow ServiceNowConfig `mapstructure:"servicenow"`
	Infoblox   InfobloxConfig   `mapstructure:"infoblox"`
	TLS        TLSConfig        `mapstructure:"tls"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// ServiceNowConfig configures the source of record.
type ServiceNowConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	AuthMode string `mapstructure:"auth_mode"`
	Table    string `mapstructure:"table"`
	Query    string `mapstructure:"query"`
	Field    string `mapstructure:"field"`
	Limit    int    `mapstructure:"limit"`
	PageSize int    `mapstructure:"page_size"`
	Proxy    string `mapstructure:"proxy"`
}

// InfobloxConfig configures the target.
type InfobloxConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Attribute string `mapstructure:"attribute"`
	Proxy     string `mapstructure:"proxy"`
}

// TLSConfig controls certificate verification for both systems.
type TLSConfig struct {
	Verify bool `mapstructure:"verify"`
}

// HTTPConfig holds shared transport settings.
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RateLimit  float64       `mapstructure:"rate_limit"`
}

// SyncConfig tunes the reconciler.
type SyncConfig struct {
	MaxLength   int    `mapstructure:"max_length"`
	MinValues   int    `mapstructure:"min_values"`
	Placeholder string `mapstructure:"placeholder"`
}

// SnapshotConfig selects where pre-write snapshots go. Both sinks are optional.
type SnapshotConfig struct {
	Dir         string `mapstructure:"dir"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3Prefix    string `mapstructure:"s3_prefix"`
	S3PathStyle bool   `mapstructure:"s3_path_style"`
}

// MetricsConfig selects how run metrics are exported. Both are optional.
type MetricsConfig struct {
	Textfile       string `mapstructure:"textfile"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LogConfig configures console and file logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps keys to the variable names used by the original scripts.
var legacyEnv = map[string]string{
	"servicenow.endpoint": "SERVICENOW_API_ENDPOINT",
	"servicenow.username": "SERVICENOW_API_USERNAME",
	"servicenow.token":    "SERVICENOW_API_TOKEN",
	"servicenow.limit":    "SERVICE_NOW_API_LIMIT",
	"servicenow.proxy":    "SERVICENOW_PROXY",
	"infoblox.endpoint":   "INFOBLOX_API_ENDPOINT",
	"infoblox.username":   "INFOBLOX_API_USERNAME",
	"infoblox.password":   "INFOBLOX_API_PASSWORD",
	"log.dir":             "LOG_DIR",
	"log.level":           "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("servicenow.endpoint", "")
	v.SetDefault("servicenow.username", "")
	v.SetDefault("servicenow.token", "")
	v.SetDefault("servicenow.auth_mode", "basic")
	v.SetDefault("servicenow.table", constants.DefaultSourceTable)
	v.SetDefault("servicenow.query", constants.DefaultSourceQuery)
	v.SetDefault("servicenow.field", constants.DefaultSourceField)
	v.SetDefault("servicenow.limit", constants.DefaultRecordLimit)
	v.SetDefault("servicenow.page_size", constants.DefaultPageSize)
	v.SetDefault("servicenow.proxy", "")

	v.SetDefault("infoblox.endpoint", "")
	v.SetDefault("infoblox.username", "")
	v.SetDefault("infoblox.password", "")
	v.SetDefault("infoblox.attribute", constants.DefaultAttributeName)
	v.SetDefault("infoblox.proxy", "")

	v.SetDefault("tls.verify", false)

	v.SetDefault("http.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("http.max_retries", constants.MaxRetries)
	v.SetDefault("http.rate_limit", constants.DefaultRateLimit)

	v.SetDefault("sync.max_length", constants.EnumMaxLength)
	v.SetDefault("sync.min_values", 0)
	v.SetDefault("sync.placeholder", constants.DefaultFlushPlaceholder)

	v.SetDefault("snapshot.dir", "")
	v.SetDefault("snapshot.s3_bucket", "")
	v.SetDefault("snapshot.s3_region", "")
	v.SetDefault("snapshot.s3_endpoint", "")
	v.SetDefault("snapshot.s3_prefix", "")
	v.SetDefault("snapshot.s3_path_style", false)

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", constants.DefaultMetricsJob)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", constants.DefaultLogDir)
	v.SetDefault("log.format", "auto")
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file; an unreadable file is an error.
	File string
	// SearchPaths overrides the default candidate files.
	SearchPaths []string
	// EnvFiles overrides the default .env.local, .env.
	EnvFiles []string
}

// DefaultSearchPaths returns the config files tried when none is given.
func DefaultSearchPaths() []string {
	paths := []string{"locsync.yaml", "config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".locsync.yaml"))
	}
	return paths
}

// Load reads configuration from every source. It does not validate.
func Load(opts Options) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, errors.NewConfigError("config", "binding "+legacy, err)
		}
	}

	file := opts.File
	if file == "" {
		search := opts.SearchPaths
		if search == nil {
			search = DefaultSearchPaths()
		}
		file = firstExisting(search)
	} else if _, err := os.Stat(file); err != nil {
		return nil, errors.NewConfigError("config", "config file not readable", errors.WrapIO("read", file, err))
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+file, errors.WrapParse("yaml", file, err))
		}
		applyLegacyFileKeys(v)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "decoding settings", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	return cfg, nil
}

// applyLegacyFileKeys reads the flat upper-case keys of the original
// config.yaml. A dotted key in the same file wins, and environment variables
// still win over both, so the legacy value is installed as a default.
func applyLegacyFileKeys(v *viper.Viper) {
	for key, legacy := range legacyEnv {
		name := strings.ToLower(legacy)
		if !v.InConfig(name) || v.InConfig(key) {
			continue
		}
		v.SetDefault(key, v.Get(name))
	}
}

// loadEnvFiles loads .env files. godotenv never overrides a variable that is
// already set, so the more specific file is loaded first.
func loadEnvFiles(files []string) {
	if files == nil {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

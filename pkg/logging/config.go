package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/agentstation/locsync/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum log level to output
	Level string

	// Format is the console output format (auto, json, console)
	Format string

	// Output is where console logs go (stderr, stdout, discard)
	Output string

	// Writer replaces Output when set
	Writer io.Writer

	// Dir enables the rotating JSON log file <Dir>/locsync.log when set
	Dir string

	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept
	MaxBackups int

	// TimeFormat for console timestamps (kitchen, rfc3339, datetime, or a layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are default fields to include in all logs
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		MaxSizeMB:  constants.LogRotationSizeMB,
		MaxBackups: constants.LogRotationBackups,
		TimeFormat: "datetime",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// NewLoggerFromConfig creates a new logger from configuration. The returned
// closer releases the log file and must be called once the run is over.
func NewLoggerFromConfig(cfg *Config) (zerolog.Logger, io.Closer) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)

	writer, closer, fileErr := getWriter(cfg)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		ctx := logger.With()
		for k, v := range cfg.Fields {
			ctx = addField(ctx, k, v)
		}
		logger = ctx.Logger()
	}

	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("dir", cfg.Dir).Msg("Log file disabled; logging to console only")
	}

	return logger, closer
}

// getWriter builds the console writer and, when a directory is configured,
// tees JSON lines into a rotating file. If the directory cannot be created
// the console writer is returned along with the error.
func getWriter(cfg *Config) (io.Writer, io.Closer, error) {
	console := consoleWriter(cfg)

	if cfg.Dir == "" {
		return console, nopCloser{}, nil
	}

	if err := os.MkdirAll(cfg.Dir, constants.DirPermissions); err != nil {
		return console, nopCloser{}, err
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = constants.LogRotationSizeMB
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = constants.LogRotationBackups
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, constants.LogFileName),
		MaxSize:    maxSize,
		MaxBackups: backups,
	}

	return zerolog.MultiLevelWriter(console, file), file, nil
}

func consoleWriter(cfg *Config) io.Writer {
	var output io.Writer
	switch {
	case cfg.Writer != nil:
		output = cfg.Writer
	case strings.EqualFold(cfg.Output, "stdout"):
		output = os.Stdout
	case strings.EqualFold(cfg.Output, "discard"), strings.EqualFold(cfg.Output, "none"):
		return io.Discard
	default:
		output = os.Stderr
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := output.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "console"
		}
	}

	switch format {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: parseTimeFormat(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	default:
		return output
	}
}

// parseLevel parses a log level string
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

// parseTimeFormat parses time format configuration
func parseTimeFormat(format string) string {
	switch strings.ToLower(format) {
	case "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "datetime", "":
		return time.DateTime
	default:
		if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
			return format
		}
		return time.DateTime
	}
}

// addField adds a field to the context based on its type
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case bool:
		return ctx.Bool(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

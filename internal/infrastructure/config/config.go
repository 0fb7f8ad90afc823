package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Template    TemplateConfig
	Render      RenderConfig
	Ghostscript GhostscriptConfig
	Printer     PrinterConfig
	HTTP        HTTPConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// Timezone formats time labels and header dates (IANA name, default Local)
	Timezone string
	// ScratchDir holds per-job temporary documents and frames
	ScratchDir string
	// SweepInterval is how often serve removes orphaned workspaces; 0 disables
	SweepInterval time.Duration
	// SweepOlderThan is the age at which a workspace counts as orphaned
	SweepOlderThan time.Duration
}

// Location resolves Timezone, falling back to time.Local
func (a AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("app.timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// DatabaseConfig holds job history database settings
type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	Path            string // sqlite file, ":memory:" for tests
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the shared job guard
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Key      string
	GuardTTL time.Duration
}

// TemplateConfig selects the form template
type TemplateConfig struct {
	Name        string // embedded name, external name or a .yaml path
	ExternalDir string // searched before the embedded templates
}

// RenderConfig holds page stamping settings
type RenderConfig struct {
	PreparedBy     string
	WatermarkLabel string
}

// GhostscriptConfig holds rasterizer settings
type GhostscriptConfig struct {
	BinaryPath string
	Device     string
	DPI        int
	Timeout    time.Duration
}

// PrinterConfig holds printer settings
type PrinterConfig struct {
	Default   string // directory, spool
	OutputDir string // directory printer target
	// Spool printer (CUPS lp)
	Destination string
	SpoolBinary string
	Sides       string
	Copies      int
	Timeout     time.Duration
	// Paper geometry, in inches
	PaperWidth  float64
	PaperHeight float64
	Margin      float64
	DPI         int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to enable OpenTelemetry
	CollectorEndpoint string        // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64       // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string        // Service name for traces
	Insecure          bool          // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	MetricsEnabled    bool          // Export job metrics over OTLP
	MetricsInterval   time.Duration // Metrics export interval
	LogsEnabled       bool          // Bridge zap logs to the collector (serve only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LOGPRINTER_ prefix (e.g., LOGPRINTER_PRINTER_DESTINATION)
// 2. logprinter.toml in ".", or "/etc/logprinter"
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("logprinter")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/logprinter")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetDefault("app.sweep_interval", time.Hour)

	// Enable environment variable override
	v.SetEnvPrefix("LOGPRINTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:           v.GetString("app.name"),
			Env:            v.GetString("app.env"),
			Port:           v.GetString("app.port"),
			Timezone:       v.GetString("app.timezone"),
			ScratchDir:     v.GetString("app.scratch_dir"),
			SweepInterval:  v.GetDuration("app.sweep_interval"),
			SweepOlderThan: v.GetDuration("app.sweep_older_than"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Key:      v.GetString("redis.key"),
			GuardTTL: v.GetDuration("redis.guard_ttl"),
		},
		Template: TemplateConfig{
			Name:        v.GetString("template.name"),
			ExternalDir: v.GetString("template.external_dir"),
		},
		Render: RenderConfig{
			PreparedBy:     v.GetString("render.prepared_by"),
			WatermarkLabel: v.GetString("render.watermark_label"),
		},
		Ghostscript: GhostscriptConfig{
			BinaryPath: v.GetString("ghostscript.binary_path"),
			Device:     v.GetString("ghostscript.device"),
			DPI:        v.GetInt("ghostscript.dpi"),
			Timeout:    v.GetDuration("ghostscript.timeout"),
		},
		Printer: PrinterConfig{
			Default:     v.GetString("printer.default"),
			OutputDir:   v.GetString("printer.output_dir"),
			Destination: v.GetString("printer.destination"),
			SpoolBinary: v.GetString("printer.spool_binary"),
			Sides:       v.GetString("printer.sides"),
			Copies:      v.GetInt("printer.copies"),
			Timeout:     v.GetDuration("printer.timeout"),
			PaperWidth:  v.GetFloat64("printer.paper_width"),
			PaperHeight: v.GetFloat64("printer.paper_height"),
			Margin:      v.GetFloat64("printer.margin"),
			DPI:         v.GetInt("printer.dpi"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "logprinter"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.ScratchDir == "" {
		cfg.App.ScratchDir = filepath.Join(os.TempDir(), "logprinter")
	}
	if cfg.App.SweepOlderThan == 0 {
		cfg.App.SweepOlderThan = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "logprinter.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "logprinter"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = "logprinter:job:active"
	}
	if cfg.Redis.GuardTTL == 0 {
		cfg.Redis.GuardTTL = 30 * time.Minute
	}
	if cfg.Render.PreparedBy == "" {
		cfg.Render.PreparedBy = "Mission Puck"
	}
	if cfg.Render.WatermarkLabel == "" {
		cfg.Render.WatermarkLabel = "DRAFT"
	}
	if cfg.Ghostscript.BinaryPath == "" {
		cfg.Ghostscript.BinaryPath = "gs"
	}
	if cfg.Ghostscript.Device == "" {
		cfg.Ghostscript.Device = "png16m"
	}
	if cfg.Ghostscript.DPI == 0 {
		cfg.Ghostscript.DPI = 200
	}
	if cfg.Ghostscript.Timeout == 0 {
		cfg.Ghostscript.Timeout = 2 * time.Minute
	}
	if cfg.Printer.Default == "" {
		cfg.Printer.Default = "directory"
	}
	if cfg.Printer.OutputDir == "" {
		cfg.Printer.OutputDir = "printed"
	}
	if cfg.Printer.SpoolBinary == "" {
		cfg.Printer.SpoolBinary = "lp"
	}
	if cfg.Printer.Copies == 0 {
		cfg.Printer.Copies = 1
	}
	if cfg.Printer.Timeout == 0 {
		cfg.Printer.Timeout = 60 * time.Second
	}
	if cfg.Printer.PaperWidth == 0 {
		cfg.Printer.PaperWidth = 8.5
	}
	if cfg.Printer.PaperHeight == 0 {
		cfg.Printer.PaperHeight = 11
	}
	if cfg.Printer.Margin == 0 {
		cfg.Printer.Margin = 0.25
	}
	if cfg.Printer.DPI == 0 {
		cfg.Printer.DPI = 150
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "logprinter"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := c.App.Location(); err != nil {
		return err
	}

	if c.App.SweepInterval < 0 || c.App.SweepOlderThan < 0 {
		return fmt.Errorf("app.sweep_interval and app.sweep_older_than cannot be negative")
	}

	if c.Ghostscript.DPI < 0 {
		return fmt.Errorf("ghostscript.dpi must be positive")
	}
	if c.Ghostscript.Timeout < 0 {
		return fmt.Errorf("ghostscript.timeout cannot be negative")
	}

	switch c.Printer.Default {
	case "directory":
	case "spool":
		if c.Printer.Destination == "" {
			return fmt.Errorf("printer.destination is required when printer.default is spool")
		}
	default:
		return fmt.Errorf("printer.default must be directory or spool, got %q", c.Printer.Default)
	}
	if c.Printer.Copies < 0 {
		return fmt.Errorf("printer.copies cannot be negative")
	}
	if c.Printer.PaperWidth < 0 || c.Printer.PaperHeight < 0 || c.Printer.Margin < 0 {
		return fmt.Errorf("printer paper dimensions cannot be negative")
	}
	if 2*c.Printer.Margin >= c.Printer.PaperWidth || 2*c.Printer.Margin >= c.Printer.PaperHeight {
		return fmt.Errorf("printer.margin (%.2f) leaves no printable area", c.Printer.Margin)
	}

	// Production-specific validations
	if c.App.Env == "production" && c.Database.Driver == "postgres" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port             int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout      time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15m"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	OperationTimeout time.Duration `yaml:"operation_timeout" envconfig:"OPERATION_TIMEOUT" default:"10m"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"1"`
	RateLimitBurst   int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"5"`

	// AllowedOrigins restricts CORS; empty allows any origin
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tincli.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// InputConfig controls how source files and the flag report are read
type InputConfig struct {
	SourcePattern string `yaml:"source_pattern" envconfig:"SOURCE_PATTERN" default:"*.txt"`
	Encoding      string `yaml:"encoding" envconfig:"ENCODING" default:"utf-8"`
}

// ExportConfig controls the output artifacts
type ExportConfig struct {
	// OutputDir overrides the default of writing beside the flag report
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX" default:"false"`
	Excel     bool   `yaml:"excel" envconfig:"EXCEL" default:"false"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from environment variables and the given
// YAML file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays values set in the file on top of the env config.
// An env var that is explicitly set keeps precedence.
func mergeConfigs(fileConfig, envConfig Config) Config {
	envSet := func(name string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + name)
		return ok
	}

	// Server config
	if fileConfig.Server.Port != 0 && !envSet("SERVER_PORT") {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if fileConfig.Server.OperationTimeout != 0 && !envSet("SERVER_OPERATION_TIMEOUT") {
		envConfig.Server.OperationTimeout = fileConfig.Server.OperationTimeout
	}
	if len(fileConfig.Server.AllowedOrigins) > 0 && !envSet("SERVER_ALLOWED_ORIGINS") {
		envConfig.Server.AllowedOrigins = fileConfig.Server.AllowedOrigins
	}

	// Logging config
	if fileConfig.Logging.Level != "" && !envSet("LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Format != "" && !envSet("LOGGING_FORMAT") {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if fileConfig.Logging.Output != "" && !envSet("LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && !envSet("LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	// Input config
	if fileConfig.Input.SourcePattern != "" && !envSet("INPUT_SOURCE_PATTERN") {
		envConfig.Input.SourcePattern = fileConfig.Input.SourcePattern
	}
	if fileConfig.Input.Encoding != "" && !envSet("INPUT_ENCODING") {
		envConfig.Input.Encoding = fileConfig.Input.Encoding
	}

	// Export config
	if fileConfig.Export.OutputDir != "" && !envSet("EXPORT_OUTPUT_DIR") {
		envConfig.Export.OutputDir = fileConfig.Export.OutputDir
	}
	if fileConfig.Export.BOMPrefix && !envSet("EXPORT_BOM_PREFIX") {
		envConfig.Export.BOMPrefix = true
	}
	if fileConfig.Export.Excel && !envSet("EXPORT_EXCEL") {
		envConfig.Export.Excel = true
	}

	// Telemetry config
	if fileConfig.Telemetry.EnableTracing && !envSet("TELEMETRY_ENABLE_TRACING") {
		envConfig.Telemetry.EnableTracing = true
	}
	if fileConfig.Telemetry.TraceExporter != "" && !envSet("TELEMETRY_TRACE_EXPORTER") {
		envConfig.Telemetry.TraceExporter = fileConfig.Telemetry.TraceExporter
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be positive")
	}

	if !IsSupportedEncoding(c.Input.Encoding) {
		return fmt.Errorf("unsupported input encoding: %s", c.Input.Encoding)
	}

	if c.Input.SourcePattern == "" {
		c.Input.SourcePattern = SourceFilePattern
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogsDir + "/" + DefaultLogFile
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be between 0 and 1: %v", c.Telemetry.SampleRatio)
	}

	return nil
}

// IsSupportedEncoding reports whether the named input encoding can be decoded
func IsSupportedEncoding(name string) bool {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8", EncodingWindows1252, "cp1252", EncodingLatin1, "latin1", EncodingShiftJIS, "sjis", EncodingUTF16LE:
		return true
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
		"../configs/" + DefaultConfigFile,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Minute,
			IdleTimeout:      60 * time.Second,
			ShutdownTimeout:  30 * time.Second,
			OperationTimeout: DefaultOperationTimeout,
			RateLimitRPS:     1,
			RateLimitBurst:   5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogsDir + "/" + DefaultLogFile,
		},
		Input: InputConfig{
			SourcePattern: SourceFilePattern,
			Encoding:      EncodingUTF8,
		},
		Export: ExportConfig{},
		Telemetry: TelemetryConfig{
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
	}
}

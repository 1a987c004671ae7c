package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stock-analysis/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for optional configuration fields.
const (
	DefaultName                 = "stock-analysis"
	DefaultLogLevel             = "INFO"
	DefaultHost                 = "127.0.0.1"
	DefaultPort                 = 8501
	DefaultCalendarMIC          = "xnse"
	DefaultDataDir              = "data"
	DefaultPerSymbolDir         = "output_csv"
	DefaultCombinedDir          = "output_combined"
	DefaultReportsDir           = "output_reports"
	DefaultDBType               = "sqlite"
	DefaultDBPath               = "stock_analysis.db"
	DefaultTable                = "stock_prices"
	DefaultMaxRetries           = 3
	DefaultTopN                 = 10
	DefaultCumulativeTopN       = 5
	DefaultCorrelationMaxStocks = 15
	DefaultCorrelationCoverage  = 0.7
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. A .env file in the working
// directory is loaded first so ${VAR} references can be expanded.
func NewConfig(configPath string) (*Config, error) {
	// 1. Load .env (optional)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var modelConfig models.MConfig
	if err := yaml.Unmarshal([]byte(expanded), &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a validated configuration made only of default values.
func Default() *Config {
	config := &Config{MConfig: &models.MConfig{}}
	config.applyDefaults()
	return config
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.CalendarMIC == "" {
		c.CalendarMIC = DefaultCalendarMIC
	}

	// ETL defaults
	if c.ETL.DataDir == "" {
		c.ETL.DataDir = DefaultDataDir
	}
	if c.ETL.PerSymbolDir == "" {
		c.ETL.PerSymbolDir = DefaultPerSymbolDir
	}
	if c.ETL.CombinedDir == "" {
		c.ETL.CombinedDir = DefaultCombinedDir
	}
	if c.ETL.ReportsDir == "" {
		c.ETL.ReportsDir = DefaultReportsDir
	}

	// Storage defaults
	if c.Storage.DBType == "" {
		c.Storage.DBType = DefaultDBType
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = DefaultDBPath
	}
	if c.Storage.Table == "" {
		c.Storage.Table = DefaultTable
	}
	if c.Storage.MaxRetries == 0 {
		c.Storage.MaxRetries = DefaultMaxRetries
	}

	// Analytics defaults
	if c.Analytics.SectorMappingPath == "" {
		c.Analytics.SectorMappingPath = filepath.Join(c.ETL.DataDir, "sector_mapping.csv")
	}
	if c.Analytics.TopN == 0 {
		c.Analytics.TopN = DefaultTopN
	}
	if c.Analytics.CumulativeTopN == 0 {
		c.Analytics.CumulativeTopN = DefaultCumulativeTopN
	}
	if c.Analytics.CorrelationMaxStocks == 0 {
		c.Analytics.CorrelationMaxStocks = DefaultCorrelationMaxStocks
	}
	if c.Analytics.CorrelationCoverage == 0 {
		c.Analytics.CorrelationCoverage = DefaultCorrelationCoverage
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// ETL directories
	if c.ETL.DataDir == "" {
		return fmt.Errorf("etl.data_dir cannot be empty")
	}
	if c.ETL.PerSymbolDir == "" || c.ETL.CombinedDir == "" || c.ETL.ReportsDir == "" {
		return fmt.Errorf("etl output directories cannot be empty")
	}

	// Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}
	if c.Storage.MaxRetries < 1 {
		return fmt.Errorf("storage.max_retries must be >= 1")
	}

	// Analytics configuration
	if c.Analytics.TopN < 1 {
		return fmt.Errorf("analytics.top_n must be >= 1")
	}
	if c.Analytics.CumulativeTopN < 1 {
		return fmt.Errorf("analytics.cumulative_top_n must be >= 1")
	}
	if c.Analytics.CorrelationMaxStocks < 2 {
		return fmt.Errorf("analytics.correlation_max_stocks must be >= 2")
	}
	if c.Analytics.CorrelationCoverage <= 0 || c.Analytics.CorrelationCoverage > 1 {
		return fmt.Errorf("analytics.correlation_coverage must be in (0, 1], got %v", c.Analytics.CorrelationCoverage)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

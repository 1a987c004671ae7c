package models

// MConfig Structure
type MConfig struct {
	Name        string           `yaml:"name"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	LogLevel    string           `yaml:"log_level"`
	CalendarMIC string           `yaml:"calendar_mic"`
	ETL         METLConfig       `yaml:"etl"`
	Storage     MStorageConfig   `yaml:"storage"`
	Analytics   MAnalyticsConfig `yaml:"analytics"`
}

type METLConfig struct {
	DataDir      string `yaml:"data_dir"`
	PerSymbolDir string `yaml:"per_symbol_dir"`
	CombinedDir  string `yaml:"combined_dir"`
	ReportsDir   string `yaml:"reports_dir"`
	SkipExisting bool   `yaml:"skip_existing"` // opt-in idempotency on symbol+timestamp
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	Schema             string `yaml:"db_schema"` // postgres only, empty = search_path
	Table              string `yaml:"table"`
	MaxRetries         int    `yaml:"max_retries"`
}

type MAnalyticsConfig struct {
	SectorMappingPath    string  `yaml:"sector_mapping_path"`
	TopN                 int     `yaml:"top_n"`
	CumulativeTopN       int     `yaml:"cumulative_top_n"`
	CorrelationMaxStocks int     `yaml:"correlation_max_stocks"`
	CorrelationCoverage  float64 `yaml:"correlation_coverage"`
}

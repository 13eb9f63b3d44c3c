package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Consolidate ConsolidateConfig `yaml:"consolidate" mapstructure:"consolidate"`
	Crosscheck  CrosscheckConfig  `yaml:"crosscheck" mapstructure:"crosscheck"`
	Dataweb     DatawebConfig     `yaml:"dataweb" mapstructure:"dataweb"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the source spreadsheets and names the entity key.
type DataConfig struct {
	BaseDir      string   `yaml:"base_dir" mapstructure:"base_dir"`
	KeyColumns   []string `yaml:"key_columns" mapstructure:"key_columns"`
	AnchorColumn string   `yaml:"anchor_column" mapstructure:"anchor_column"`
	CatalogFile  string   `yaml:"catalog_file" mapstructure:"catalog_file"`
}

// ConsolidateConfig configures the monthly consolidation pass.
//
// BatchOrder is the named precedence policy for the independently sorted
// file batches: on a key collision the first listed batch wins. The original
// workflow processed "ascending" before "descending"; keep that order unless
// you know the batches disagree and want the other side to win.
type ConsolidateConfig struct {
	BatchOrder     []string `yaml:"batch_order" mapstructure:"batch_order"`
	MonthsFrom     string   `yaml:"months_from" mapstructure:"months_from"`
	MonthsTo       string   `yaml:"months_to" mapstructure:"months_to"`
	HeaderScanRows int      `yaml:"header_scan_rows" mapstructure:"header_scan_rows"`
	OutDir         string   `yaml:"out_dir" mapstructure:"out_dir"`
}

// CrosscheckConfig configures the comparison against the official export.
type CrosscheckConfig struct {
	Tolerance         float64 `yaml:"tolerance" mapstructure:"tolerance"`
	OfficialFile      string  `yaml:"official_file" mapstructure:"official_file"`
	CacheFile         string  `yaml:"cache_file" mapstructure:"cache_file"`
	ProcessedFile     string  `yaml:"processed_file" mapstructure:"processed_file"`
	ReportFile        string  `yaml:"report_file" mapstructure:"report_file"`
	TopMismatchesShow int     `yaml:"top_mismatches_show" mapstructure:"top_mismatches_show"`
}

// DatawebConfig holds USITC DataWeb API settings.
type DatawebConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	RecordLimit    int     `yaml:"record_limit" mapstructure:"record_limit"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	CheckpointDB   string  `yaml:"checkpoint_db" mapstructure:"checkpoint_db"`
	OutputFile     string  `yaml:"output_file" mapstructure:"output_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.base_dir", ".")
	v.SetDefault("data.key_columns", []string{"Country", "HTS Number"})
	v.SetDefault("data.anchor_column", "HTS Number")
	v.SetDefault("data.catalog_file", "variables.yaml")
	v.SetDefault("consolidate.batch_order", []string{"ascending", "descending"})
	v.SetDefault("consolidate.months_from", "2024-01")
	v.SetDefault("consolidate.months_to", "2025-07")
	v.SetDefault("consolidate.header_scan_rows", 5)
	v.SetDefault("consolidate.out_dir", ".")
	v.SetDefault("crosscheck.tolerance", 1.0)
	v.SetDefault("crosscheck.official_file", "official_summary_data.xlsx")
	v.SetDefault("crosscheck.cache_file", "your_summary_cache.parquet")
	v.SetDefault("crosscheck.processed_file", "official_summary_processed.csv")
	v.SetDefault("crosscheck.report_file", "validation_report.xlsx")
	v.SetDefault("crosscheck.top_mismatches_show", 25)
	v.SetDefault("dataweb.base_url", "https://datawebws.usitc.gov/dataweb")
	v.SetDefault("dataweb.api_key", "")
	v.SetDefault("dataweb.record_limit", 20000)
	v.SetDefault("dataweb.requests_per_sec", 1.0)
	v.SetDefault("dataweb.max_retries", 4)
	v.SetDefault("dataweb.checkpoint_db", "fetch_checkpoint.db")
	v.SetDefault("dataweb.output_file", "usitc_imports_final.csv")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Data.KeyColumns) == 0 {
		return eris.New("config: data.key_columns must not be empty")
	}
	if c.Data.AnchorColumn == "" {
		return eris.New("config: data.anchor_column must not be empty")
	}
	if len(c.Consolidate.BatchOrder) == 0 {
		return eris.New("config: consolidate.batch_order must not be empty")
	}
	if c.Crosscheck.Tolerance < 0 {
		return eris.New("config: crosscheck.tolerance must not be negative")
	}
	if c.Consolidate.HeaderScanRows <= 0 {
		return eris.New("config: consolidate.header_scan_rows must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

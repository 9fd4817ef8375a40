package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/directory-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Platforms  PlatformsConfig  `yaml:"platforms" mapstructure:"platforms"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// PlatformConfig configures a single scraping source.
type PlatformConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PlatformsConfig groups the per-source settings.
type PlatformsConfig struct {
	Yelp       PlatformConfig `yaml:"yelp" mapstructure:"yelp"`
	GoogleMaps PlatformConfig `yaml:"google_maps" mapstructure:"google_maps"`
}

// ScrapeConfig configures scrape orchestration.
type ScrapeConfig struct {
	ConcurrentRequests int     `yaml:"concurrent_requests" mapstructure:"concurrent_requests"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxReviews         int     `yaml:"max_reviews" mapstructure:"max_reviews"`
	FetchDetails       bool    `yaml:"fetch_details" mapstructure:"fetch_details"`
}

// ProcessingConfig configures the reconciliation pipeline.
type ProcessingConfig struct {
	EmailValidation bool `yaml:"email_validation" mapstructure:"email_validation"`
	Sentiment       bool `yaml:"sentiment" mapstructure:"sentiment"`
}

// ExportConfig configures result export.
type ExportConfig struct {
	Format    string `yaml:"format" mapstructure:"format"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("DIRECTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "directory.db")
	v.SetDefault("platforms.yelp.enabled", true)
	v.SetDefault("platforms.yelp.base_url", "https://www.yelp.com")
	v.SetDefault("platforms.google_maps.enabled", true)
	v.SetDefault("platforms.google_maps.base_url", "https://www.google.com/maps")
	v.SetDefault("scrape.concurrent_requests", 2)
	v.SetDefault("scrape.requests_per_second", 0.5)
	v.SetDefault("scrape.timeout_secs", 60)
	v.SetDefault("scrape.max_reviews", 25)
	v.SetDefault("scrape.fetch_details", false)
	v.SetDefault("processing.email_validation", true)
	v.SetDefault("processing.sentiment", false)
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("server.port", 8080)
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

	return &cfg, nil
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

// LoadSearchFilter reads a search filter definition from a YAML file.
func LoadSearchFilter(path string) (*model.SearchFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read filter file %s", path)
	}

	var filter model.SearchFilter
	if err := yaml.Unmarshal(data, &filter); err != nil {
		return nil, eris.Wrapf(err, "config: parse filter file %s", path)
	}

	return &filter, nil
}

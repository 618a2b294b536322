package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/water-atlas/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the dataset files and the two boundary files. Each
// location is an http(s) URL or a local path; boundaries may also be .shp.
type DataConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url" validate:"required"`
	WaterRegions string `yaml:"water_regions" mapstructure:"water_regions" validate:"required"`
	WorldRegions string `yaml:"world_regions" mapstructure:"world_regions" validate:"required"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"min=1"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries" validate:"min=1,max=5"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	RatePerHost float64 `yaml:"rate_per_host" mapstructure:"rate_per_host" validate:"gte=0"`
	Burst       int     `yaml:"burst" mapstructure:"burst" validate:"min=1"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// ThresholdsConfig holds the initial thresholds of each data type.
type ThresholdsConfig struct {
	Stress   []float64 `yaml:"stress" mapstructure:"stress" validate:"len=3"`
	Shortage []float64 `yaml:"shortage" mapstructure:"shortage" validate:"len=3"`
	Scarcity []float64 `yaml:"scarcity" mapstructure:"scarcity" validate:"len=3"`
}

// Set converts the configured lists into a validated ThresholdSet.
func (t ThresholdsConfig) Set() (model.ThresholdSet, error) {
	var set model.ThresholdSet
	for _, e := range []struct {
		name string
		src  []float64
		dst  *model.Thresholds
	}{
		{"stress", t.Stress, &set.Stress},
		{"shortage", t.Shortage, &set.Shortage},
		{"scarcity", t.Scarcity, &set.Scarcity},
	} {
		if len(e.src) != len(e.dst) {
			return set, eris.Errorf("config: thresholds.%s needs %d values, got %d", e.name, len(e.dst), len(e.src))
		}
		copy(e.dst[:], e.src)
		if err := e.dst.Validate(); err != nil {
			return set, eris.Wrapf(err, "config: thresholds.%s", e.name)
		}
	}
	return set, nil
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// StoreConfig configures the bookmark database. An empty DSN disables
// bookmarks.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	defaults := model.DefaultThresholds()
	v.SetDefault("data.base_url", "data")
	v.SetDefault("data.water_regions", "data/fpu.geojson")
	v.SetDefault("data.world_regions", "data/worldregions.geojson")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 1)
	v.SetDefault("fetch.user_agent", "water-atlas/1.0")
	v.SetDefault("fetch.rate_per_host", 0)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("thresholds.stress", defaults.Stress[:])
	v.SetDefault("thresholds.shortage", defaults.Shortage[:])
	v.SetDefault("thresholds.scarcity", defaults.Scarcity[:])
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("store.dsn", "")
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and threshold ordering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	if _, err := c.Thresholds.Set(); err != nil {
		return err
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

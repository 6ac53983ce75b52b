package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pawmap/pawmap/internal/classify"
	"github.com/pawmap/pawmap/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Kakao   KakaoConfig   `yaml:"kakao" mapstructure:"kakao"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Ranking RankingConfig `yaml:"ranking" mapstructure:"ranking"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// KakaoConfig holds Kakao Local API settings.
type KakaoConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PageSize    int     `yaml:"page_size" mapstructure:"page_size"`
	MaxPages    int     `yaml:"max_pages" mapstructure:"max_pages"`
	Attempts    int     `yaml:"attempts" mapstructure:"attempts"`
}

// StoreConfig configures the search response cache.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SearchConfig configures place search filtering and caching.
type SearchConfig struct {
	CacheTTLHours int      `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	Policy        string   `yaml:"policy" mapstructure:"policy"`
	X             string   `yaml:"x" mapstructure:"x"`
	Y             string   `yaml:"y" mapstructure:"y"`
	Radius        int      `yaml:"radius" mapstructure:"radius"`
	Concurrency   int      `yaml:"concurrency" mapstructure:"concurrency"`
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`
}

// CacheTTL returns the cache lifetime as a duration.
func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

// DataConfig locates the input datasets.
type DataConfig struct {
	Districts   string `yaml:"districts" mapstructure:"districts"`
	Clusters    string `yaml:"clusters" mapstructure:"clusters"`
	ClusterInfo string `yaml:"cluster_info" mapstructure:"cluster_info"`
	Boundaries  string `yaml:"boundaries" mapstructure:"boundaries"`
	NameField   string `yaml:"name_field" mapstructure:"name_field"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
	Palette     string `yaml:"palette" mapstructure:"palette"`
}

// RankingConfig holds the initial weights and list length.
type RankingConfig struct {
	TopN           int     `yaml:"top_n" mapstructure:"top_n"`
	HospitalWeight float64 `yaml:"hospital_weight" mapstructure:"hospital_weight"`
	CafeWeight     float64 `yaml:"cafe_weight" mapstructure:"cafe_weight"`
	ParkWeight     float64 `yaml:"park_weight" mapstructure:"park_weight"`
}

// Weights returns the configured weight vector.
func (r RankingConfig) Weights() model.Weights {
	return model.Weights{Hospital: r.HospitalWeight, Cafe: r.CafeWeight, Park: r.ParkWeight}
}

// Load reads configuration from file and environment. An empty path looks for an optional
// config.yaml in the working directory; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("PAWMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("kakao.key", "")
	v.SetDefault("kakao.base_url", "https://dapi.kakao.com")
	v.SetDefault("kakao.rate_limit", 5.0)
	v.SetDefault("kakao.timeout_secs", 10)
	v.SetDefault("kakao.page_size", 15)
	v.SetDefault("kakao.max_pages", 45)
	v.SetDefault("kakao.attempts", 3)
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.database_url", "")
	v.SetDefault("search.cache_ttl_hours", 24)
	v.SetDefault("search.policy", "lenient")
	v.SetDefault("search.x", "")
	v.SetDefault("search.y", "")
	v.SetDefault("search.radius", 0)
	v.SetDefault("search.concurrency", 2)
	v.SetDefault("search.keywords", []string{"공원", "산책로"})
	v.SetDefault("data.districts", "data/district_facility_counts.json")
	v.SetDefault("data.clusters", "data/district_clusters.json")
	v.SetDefault("data.cluster_info", "data/cluster_info.json")
	v.SetDefault("data.boundaries", "")
	v.SetDefault("data.name_field", "ADM_NM")
	v.SetDefault("data.encoding", "utf-8")
	v.SetDefault("data.palette", "")
	v.SetDefault("ranking.top_n", 5)
	v.SetDefault("ranking.hospital_weight", 1.0)
	v.SetDefault("ranking.cafe_weight", 1.0)
	v.SetDefault("ranking.park_weight", 1.0)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is the command name.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "rank":
		errs = append(errs, c.requireDistricts()...)
		if c.Ranking.TopN <= 0 {
			errs = append(errs, "ranking.top_n must be > 0")
		}
	case "cluster":
		errs = append(errs, c.requireDistricts()...)
	case "classify":
		errs = append(errs, c.checkPolicy()...)
	case "count":
		if c.Data.Boundaries == "" {
			errs = append(errs, "data.boundaries is required")
		}
	case "search":
		if c.Kakao.Key == "" {
			errs = append(errs, "kakao.key is required")
		}
		errs = append(errs, c.checkPolicy()...)
		errs = append(errs, c.checkStore()...)
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		errs = append(errs, c.requireDistricts()...)
		errs = append(errs, c.checkPolicy()...)
		errs = append(errs, c.checkStore()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Kakao.RateLimit < 0 {
		errs = append(errs, "kakao.rate_limit must be >= 0")
	}

	if len(errs) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (c *Config) requireDistricts() []string {
	if c.Data.Districts == "" {
		return []string{"data.districts is required"}
	}
	return nil
}

func (c *Config) checkPolicy() []string {
	if _, err := classify.ParsePolicy(c.Search.Policy); err != nil {
		return []string{fmt.Sprintf("search.policy %q is not lenient, strict or park", c.Search.Policy)}
	}
	return nil
}

func (c *Config) checkStore() []string {
	switch c.Store.Driver {
	case "", "none":
		return nil
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required for driver " + c.Store.Driver}
		}
		return nil
	default:
		return []string{fmt.Sprintf("store.driver %q must be sqlite, postgres or none", c.Store.Driver)}
	}
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

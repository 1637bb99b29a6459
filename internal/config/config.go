package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"price-recon/internal/reconcile/model"
)

type Config struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	LogLevel     string   `mapstructure:"log_level"`
	LogFile      string   `mapstructure:"log_file"`
	MaxUploadMB  int      `mapstructure:"max_upload_mb"`
	DBPath       string   `mapstructure:"db_path"` // пусто — история прогонов не пишется

	Threshold       float64 `mapstructure:"threshold"`
	Workers         int     `mapstructure:"workers"`
	DuplicatePolicy string  `mapstructure:"duplicate_policy"`
	StrictPrices    bool    `mapstructure:"strict_prices"`
	NormalizeNames  bool    `mapstructure:"normalize_names"`
}

// Load: дефолты -> config.yaml (если есть) -> переменные окружения (PORT, LOG_LEVEL, THRESHOLD, ...).
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, eris.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "decode config")
	}
	// ALLOW_ORIGINS из окружения приходит строкой "a,b"
	if len(cfg.AllowOrigins) == 1 && strings.Contains(cfg.AllowOrigins[0], ",") {
		cfg.AllowOrigins = strings.Split(cfg.AllowOrigins[0], ",")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/price-recon.log")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("db_path", "data/price-recon.db")

	v.SetDefault("threshold", model.DefaultThreshold)
	v.SetDefault("workers", 1)
	v.SetDefault("duplicate_policy", string(model.DuplicateLastWins))
	v.SetDefault("strict_prices", false)
	v.SetDefault("normalize_names", true)
}

func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within 0..100, got %v", c.Threshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("max_upload_mb must be >= 1, got %d", c.MaxUploadMB)
	}
	if _, err := model.ParseDuplicatePolicy(c.DuplicatePolicy); err != nil {
		return err
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Options — параметры сверки из конфига. Validate уже проверил политику дублей.
func (c Config) Options() model.Options {
	dup, _ := model.ParseDuplicatePolicy(c.DuplicatePolicy)
	return model.Options{
		Threshold:      c.Threshold,
		NormalizeNames: c.NormalizeNames,
		Duplicates:     dup,
		StrictPrices:   c.StrictPrices,
		Workers:        c.Workers,
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ENRON_SUMMARY"

// Config holds one run's settings after flags, environment and the optional
// config file have been merged.
type Config struct {
	TopN              int      `mapstructure:"top_n"`
	OutputDir         string   `mapstructure:"output_dir"`
	RankingFile       string   `mapstructure:"ranking_file"`
	SentChartFile     string   `mapstructure:"sent_chart_file"`
	ContactsChartFile string   `mapstructure:"contacts_chart_file"`
	JSONPath          string   `mapstructure:"json"`
	LogLevel          string   `mapstructure:"log_level"`
	DB                DBConfig `mapstructure:"db"`
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("top_n", defaultTopN)
	v.SetDefault("output_dir", ".")
	v.SetDefault("ranking_file", "Output_1.csv")
	v.SetDefault("sent_chart_file", "Output_2.png")
	v.SetDefault("contacts_chart_file", "Output_3.png")
	v.SetDefault("json", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.init", false)
	v.SetDefault("db.url", "")
	v.SetDefault("db.schema", "enron_event_summary")
	v.SetDefault("db.tag", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags maps command flags onto config keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"top_n":      "top-n",
		"output_dir": "output-dir",
		"json":       "json",
		"log_level":  "log-level",
		"db.enabled": "db",
		"db.init":    "init-db",
		"db.schema":  "db-schema",
		"db.tag":     "db-tag",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.TopN <= 0 {
		return Config{}, errors.New("top_n must be positive")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log_level: %w", err)
	}
	if cfg.DB.Enabled || cfg.DB.Init {
		if cfg.DB.URL == "" {
			cfg.DB.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if cfg.DB.URL == "" {
			return Config{}, errors.New("database URL missing; set ENRON_SUMMARY_DB_URL or DATABASE_URL")
		}
		if _, err := sanitizeSchema(cfg.DB.Schema); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c Config) outputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

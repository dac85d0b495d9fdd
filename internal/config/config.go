// Package config loads settings from defaults, an optional YAML file, a .env file and
// PASTEMYPROMPT_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AstralShardio/pastemyprompt/internal/schedule"
	"github.com/AstralShardio/pastemyprompt/internal/similar"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

const EnvPrefix = "PASTEMYPROMPT"

type Config struct {
	// Dir overrides store discovery.
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
	Pretty bool   `mapstructure:"pretty"`
	// Pro grants the pro entitlement regardless of the stored flag.
	Pro bool `mapstructure:"pro"`

	Log        LogConfig        `mapstructure:"log"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Undo       UndoConfig       `mapstructure:"undo"`
	Search     SearchConfig     `mapstructure:"search"`
	Tree       TreeConfig       `mapstructure:"tree"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	Env   string `mapstructure:"env"`
}

type SimilarityConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type UndoConfig struct {
	Window time.Duration `mapstructure:"window"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type TreeConfig struct {
	EdgeFraction float64 `mapstructure:"edge_fraction"`
}

func Default() Config {
	return Config{
		Format:     "json",
		Log:        LogConfig{Env: "dev"},
		Similarity: SimilarityConfig{Threshold: similar.DefaultThreshold},
		Undo:       UndoConfig{Window: schedule.DefaultUndoWindow},
		Search:     SearchConfig{Debounce: schedule.DefaultSearchDebounce},
		Tree:       TreeConfig{EdgeFraction: tree.DefaultEdgeFraction},
	}
}

type Options struct {
	// File is an explicit config file. When empty, config.yaml is looked up in the
	// working directory and $HOME/.pastemyprompt.
	File string
	// EnvFiles are loaded before reading the environment. Nil loads ./.env if present.
	EnvFiles []string
}

func Load(opts Options) (*Config, error) {
	if opts.EnvFiles == nil {
		_ = godotenv.Load()
	} else if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	d := Default()
	v.SetDefault("dir", d.Dir)
	v.SetDefault("format", d.Format)
	v.SetDefault("pretty", d.Pretty)
	v.SetDefault("pro", d.Pro)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.env", d.Log.Env)
	v.SetDefault("similarity.threshold", d.Similarity.Threshold)
	v.SetDefault("undo.window", d.Undo.Window)
	v.SetDefault("search.debounce", d.Search.Debounce)
	v.SetDefault("tree.edge_fraction", d.Tree.EdgeFraction)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pastemyprompt")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	err := validation.Errors{
		"format":               validation.Validate(c.Format, validation.Required, validation.In("json", "yaml", "text")),
		"similarity.threshold": validation.Validate(c.Similarity.Threshold, validation.Min(0.01), validation.Max(1.0)),
		"undo.window":          validation.Validate(c.Undo.Window, validation.Min(time.Millisecond)),
		"search.debounce":      validation.Validate(c.Search.Debounce, validation.Min(time.Duration(0))),
		"tree.edge_fraction":   validation.Validate(c.Tree.EdgeFraction, validation.Min(0.01), validation.Max(0.5)),
		"log.env":              validation.Validate(strings.ToLower(c.Log.Env), validation.In("", "dev", "prod")),
	}.Filter()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

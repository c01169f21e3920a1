package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	g "github.com/reoring/goshadow"
)

// config is the resolved CLI configuration.
// Precedence: flags > GOSHADOW_* environment > config file > defaults.
type config struct {
	Schema  string
	Rules   string
	Lang    string
	NoColor bool
	Workers int

	Format     string // auto, json or yaml
	Duplicates g.Severity
	AllowNaN   bool
	MaxDepth   int
	MaxBytes   int64

	Mode   string // clean, embedded or split
	Indent int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("rules", "")
	v.SetDefault("lang", "en")
	v.SetDefault("no_color", false)
	v.SetDefault("workers", 4)
	v.SetDefault("input.format", "auto")
	v.SetDefault("input.duplicates", "warn")
	v.SetDefault("input.allow_nan", false)
	v.SetDefault("input.max_depth", 0)
	v.SetDefault("input.max_bytes", 0)
	v.SetDefault("output.mode", "embedded")
	v.SetDefault("output.indent", 0)
}

// loadConfig reads configPath when given, otherwise ./goshadow.{yaml,toml,json}
// if one exists.
func loadConfig(v *viper.Viper, configPath string) (*config, error) {
	setDefaults(v)

	v.SetEnvPrefix("GOSHADOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("goshadow")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	dup, err := parseSeverity(v.GetString("input.duplicates"))
	if err != nil {
		return nil, err
	}
	cfg := &config{
		Schema:     v.GetString("schema"),
		Rules:      v.GetString("rules"),
		Lang:       v.GetString("lang"),
		NoColor:    v.GetBool("no_color"),
		Workers:    v.GetInt("workers"),
		Format:     strings.ToLower(v.GetString("input.format")),
		Duplicates: dup,
		AllowNaN:   v.GetBool("input.allow_nan"),
		MaxDepth:   v.GetInt("input.max_depth"),
		MaxBytes:   v.GetInt64("input.max_bytes"),
		Mode:       strings.ToLower(v.GetString("output.mode")),
		Indent:     v.GetInt("output.indent"),
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *config) error {
	switch cfg.Format {
	case "auto", "json", "yaml":
	default:
		return fmt.Errorf("input.format must be auto, json or yaml, got %q", cfg.Format)
	}
	switch cfg.Mode {
	case "clean", "embedded", "split":
	default:
		return fmt.Errorf("output.mode must be clean, embedded or split, got %q", cfg.Mode)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Indent < 0 || cfg.Indent > 8 {
		return fmt.Errorf("output.indent must be between 0 and 8, got %d", cfg.Indent)
	}
	if cfg.MaxDepth < 0 || cfg.MaxBytes < 0 {
		return errors.New("input limits must not be negative")
	}
	return nil
}

func parseSeverity(s string) (g.Severity, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return g.SeverityIgnore, nil
	case "warn", "":
		return g.SeverityWarn, nil
	case "error":
		return g.SeverityError, nil
	}
	return 0, fmt.Errorf("input.duplicates must be ignore, warn or error, got %q", s)
}

func (c *config) parseOpt() g.ParseOpt {
	return g.ParseOpt{
		Strictness: g.Strictness{OnDuplicateKey: c.Duplicates, AllowNaN: c.AllowNaN},
		MaxDepth:   c.MaxDepth,
		MaxBytes:   c.MaxBytes,
	}
}

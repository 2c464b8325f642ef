package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ngsFilter/pkg/errs"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

type Config struct {
	LogLevel string  `yaml:"log_level" toml:"log_level"`
	Cascade  Cascade `yaml:"cascade" toml:"cascade"`
	Score    Score   `yaml:"score" toml:"score"`
	Trio     Trio    `yaml:"trio" toml:"trio"`
	Report   Report  `yaml:"report" toml:"report"`
}

type Cascade struct {
	// File is a cascade file with "#name" sections, Name selects one of them.
	File        string `yaml:"file" toml:"file"`
	Name        string `yaml:"name" toml:"name"`
	Mode        string `yaml:"mode" toml:"mode"`
	Tag         string `yaml:"tag" toml:"tag"`
	ThrowErrors bool   `yaml:"throw_errors" toml:"throw_errors"`
	DebugTime   bool   `yaml:"debug_time" toml:"debug_time"`
}

type Score struct {
	Algorithm    string `yaml:"algorithm" toml:"algorithm"`
	Blacklist    string `yaml:"blacklist" toml:"blacklist"`
	Explanations bool   `yaml:"explanations" toml:"explanations"`
	// Phenotypes maps phenotype names to BED files.
	Phenotypes map[string]string `yaml:"phenotypes" toml:"phenotypes"`
}

type Trio struct {
	Imprinting string `yaml:"imprinting" toml:"imprinting"`
}

type Report struct {
	Xlsx string `yaml:"xlsx" toml:"xlsx"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cascade:  Cascade{Mode: "remove", Tag: "cascade"},
		Score:    Score{Algorithm: "GSvar_v1", Explanations: true},
	}
}

// Load reads a YAML (.yaml/.yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errs.FileParse("config '%s': %v", path, err)
		}
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errs.FileParse("config '%s': %v", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errs.FileParse("config '%s': unknown keys %v", path, undecoded)
		}
	default:
		return nil, errs.Argument("config '%s': unsupported extension '%s', use .yaml, .yml or .toml", path, ext)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Cascade.Mode {
	case "remove", "tag", "keep":
	default:
		return errs.Argument("invalid cascade mode '%s', valid are remove, tag, keep", c.Cascade.Mode)
	}
	return nil
}

// Level converts LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, errs.Argument("invalid log level '%s'", c.LogLevel)
	}
	return level, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/propdoc/pkg/docpage"
	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/util"
)

const defaultConfigPath = ".propdoc/config.yaml"

// ProjectConfig holds the contents of .propdoc/config.yaml.
type ProjectConfig struct {
	MetadataRoot string   `yaml:"metadata_root" validate:"required"`
	Include      []string `yaml:"include" validate:"min=1,dive,required"`
	Exclude      []string `yaml:"exclude" validate:"dive,required"`
	OutDir       string   `yaml:"out_dir" validate:"required"`
	Package      string   `yaml:"package" validate:"required"`
	SourceURL    string   `yaml:"source_url" validate:"omitempty,url"`
	SourceExt    string   `yaml:"source_ext"`
	Heading      int      `yaml:"heading" validate:"min=1,max=6"`
	LogLevel     string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string   `yaml:"log_format" validate:"oneof=json text"`
	MCPLogPath   string   `yaml:"mcp_log_path"`
	CacheSize    int      `yaml:"cache_size" validate:"gte=0"`
}

// defaultConfig is merged under whatever the config file sets.
func defaultConfig() ProjectConfig {
	discover := metadata.DefaultDiscoverConfig()
	render := docpage.DefaultOptions()
	return ProjectConfig{
		MetadataRoot: ".",
		Include:      discover.Include,
		Exclude:      discover.Exclude,
		OutDir:       "build/propdoc",
		Package:      render.Package,
		SourceExt:    render.SourceExt,
		Heading:      render.Heading,
		LogLevel:     string(util.LevelInfo),
		LogFormat:    string(util.FormatJSON),
	}
}

// loadProjectConfig reads the config file at path and fills unset fields
// from defaultConfig. A missing file yields the defaults.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	var cfg ProjectConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	return &cfg, nil
}

// validate checks field constraints after flags have been applied.
func (c *ProjectConfig) validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// overrides holds explicitly set flag values. Empty values leave the config
// untouched.
type overrides struct {
	MetadataRoot string
	OutDir       string
	LogLevel     string
	LogFormat    string
}

// apply merges explicit flag values over the config: flag > file > default.
func (c *ProjectConfig) apply(o overrides) error {
	patch := ProjectConfig{
		MetadataRoot: o.MetadataRoot,
		OutDir:       o.OutDir,
		LogLevel:     strings.ToLower(o.LogLevel),
		LogFormat:    strings.ToLower(o.LogFormat),
	}
	if err := mergo.Merge(c, patch, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to apply flags: %w", err)
	}
	return nil
}

// discoverConfig never selects files under out_dir, so rendered output is
// not read back as metadata.
func (c *ProjectConfig) discoverConfig() metadata.DiscoverConfig {
	cfg := metadata.DiscoverConfig{Include: c.Include, Exclude: c.Exclude}
	return cfg.ExcludeDir(c.MetadataRoot, c.OutDir)
}

func (c *ProjectConfig) renderOptions() docpage.Options {
	return docpage.Options{
		Heading:   c.Heading,
		Package:   c.Package,
		SourceURL: c.SourceURL,
		SourceExt: c.SourceExt,
	}
}

// loggerConfig expects a validated config.
func (c *ProjectConfig) loggerConfig(out io.Writer) util.LoggerConfig {
	level, _ := util.ParseLogLevel(c.LogLevel)
	format, _ := util.ParseLogFormat(c.LogFormat)
	return util.LoggerConfig{Level: level, Format: format, Output: out}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propdoc/pkg/metadata"
	"github.com/gnana997/propdoc/pkg/util"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".propdoc", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProjectConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaultConfig(), *cfg)
	require.NoError(t, cfg.validate())
}

func TestLoadProjectConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
metadata_root: docs/metadata
include:
  - "**/*.json"
package: "@acme/ui"
source_url: https://github.com/acme/ui/tree/main/src
heading: 2
log_level: debug
cache_size: 64
`)

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.validate())

	assert.Equal(t, "docs/metadata", cfg.MetadataRoot)
	assert.Equal(t, []string{"**/*.json"}, cfg.Include)
	assert.Equal(t, metadata.DefaultDiscoverConfig().Exclude, cfg.Exclude, "unset fields keep defaults")
	assert.Equal(t, "@acme/ui", cfg.Package)
	assert.Equal(t, 2, cfg.Heading)
	assert.Equal(t, ".js", cfg.SourceExt)
	assert.Equal(t, "build/propdoc", cfg.OutDir)
	assert.Equal(t, 64, cfg.CacheSize)

	opts := cfg.renderOptions()
	assert.Equal(t, "https://github.com/acme/ui/tree/main/src", opts.SourceURL)
	assert.Equal(t, util.LevelDebug, cfg.loggerConfig(nil).Level)
}

func TestLoadProjectConfig_ParseError(t *testing.T) {
	path := writeConfig(t, "heading: [1, 2\n")
	_, err := loadProjectConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestProjectConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProjectConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*ProjectConfig) {}},
		{name: "heading too large", mutate: func(c *ProjectConfig) { c.Heading = 7 }, wantErr: "Heading"},
		{name: "unknown log level", mutate: func(c *ProjectConfig) { c.LogLevel = "verbose" }, wantErr: "LogLevel"},
		{name: "unknown log format", mutate: func(c *ProjectConfig) { c.LogFormat = "xml" }, wantErr: "LogFormat"},
		{name: "bad source url", mutate: func(c *ProjectConfig) { c.SourceURL = "not a url" }, wantErr: "SourceURL"},
		{name: "negative cache size", mutate: func(c *ProjectConfig) { c.CacheSize = -1 }, wantErr: "CacheSize"},
		{name: "empty include pattern", mutate: func(c *ProjectConfig) { c.Include = []string{""} }, wantErr: "Include"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestProjectConfig_ApplyFlags(t *testing.T) {
	cfg := defaultConfig()
	cfg.MetadataRoot = "from-file"

	require.NoError(t, cfg.apply(overrides{OutDir: "out", LogFormat: "TEXT"}))
	assert.Equal(t, "from-file", cfg.MetadataRoot, "empty flag keeps file value")
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NoError(t, cfg.apply(overrides{MetadataRoot: "from-flag"}))
	assert.Equal(t, "from-flag", cfg.MetadataRoot)
}

func TestProjectConfig_DiscoverConfigSkipsOutDir(t *testing.T) {
	root := t.TempDir()
	cfg := defaultConfig()
	cfg.MetadataRoot = root
	cfg.OutDir = filepath.Join(root, "docs", "api")

	discover := cfg.discoverConfig()
	assert.Equal(t, "docs/api/**", discover.Exclude[len(discover.Exclude)-1])
	assert.False(t, discover.Matches(root, filepath.Join(root, "docs", "api", "alert-props.json")))
	assert.True(t, discover.Matches(root, filepath.Join(root, "docs", "alert.json")))
	assert.Len(t, cfg.Exclude, len(metadata.DefaultDiscoverConfig().Exclude), "config is not modified")
}
